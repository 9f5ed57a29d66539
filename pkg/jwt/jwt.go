package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

var obj *JWT

var (
	ErrInvalidToken = errors.New("invalid token")
)

// JWT 访问令牌签发与校验（HS256）
type JWT struct {
	secret        []byte // 令牌密钥
	expireSeconds int64  // 令牌过期时间
}

// CustomClaims 自定义声明结构体并内嵌 jwt.RegisteredClaims
type CustomClaims struct {
	AgentID string `json:"agentId"`
	jwt.RegisteredClaims
}

// NewJWT 从配置创建JWT实例
func NewJWT(viper *viper.Viper) *JWT {
	return &JWT{
		secret:        []byte(viper.GetString("auth.jwt_secret")),
		expireSeconds: viper.GetInt64("auth.expire_seconds"),
	}
}

// MustInit 初始化 jwt
func MustInit(cfg *viper.Viper) {
	obj = NewJWT(cfg)
}

// GenToken 为指定调用方签发令牌
func GenToken(agentID string) (string, error) {
	return obj.genToken(agentID)
}

func (j *JWT) genToken(agentID string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		AgentID: agentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "oi-assistant",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(j.expireSeconds) * time.Second)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ParseToken 解析并校验令牌
func ParseToken(tokenString string) (*CustomClaims, error) {
	return obj.parseToken(tokenString)
}

func (j *JWT) parseToken(tokenString string) (*CustomClaims, error) {
	var claim CustomClaims
	token, err := jwt.ParseWithClaims(tokenString, &claim,
		func(token *jwt.Token) (interface{}, error) {
			return j.secret, nil
		})
	if err != nil {
		return nil, err
	}
	if token.Valid { // 校验token
		return &claim, nil
	}
	return nil, ErrInvalidToken
}
