package middleware

import (
	"strings"

	"github.com/hiturf/mcp-oi-assistant/api"

	"github.com/hiturf/mcp-oi-assistant/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	tokenPrefix = "Bearer "

	CtxKeyAgentID = "agentId" // 调用方ID上下文 key

)

func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从请求头中获取 token
		authorizationValue := c.GetHeader("Authorization")
		if len(authorizationValue) == 0 || !strings.HasPrefix(authorizationValue, tokenPrefix) {
			api.ResponseError(c, api.CodeNeedLogin)
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authorizationValue, tokenPrefix)
		if len(tokenString) == 0 {
			api.ResponseError(c, api.CodeInvalidToken)
			c.Abort()
			return
		}
		// 解析token，获取claims
		claims, err := jwt.ParseToken(tokenString)
		if err != nil {
			zap.L().Sugar().Debugf("parse token error: %v", err)
			api.ResponseError(c, api.CodeInvalidToken)
			c.Abort()
			return
		}
		c.Set(CtxKeyAgentID, claims.AgentID)
		c.Next()
	}
}
