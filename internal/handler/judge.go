package handler

import (
	stderrors "errors"

	"github.com/hiturf/mcp-oi-assistant/api"
	v1 "github.com/hiturf/mcp-oi-assistant/api/judge/v1"
	"github.com/hiturf/mcp-oi-assistant/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RunHandler(c *gin.Context) {
	var req *v1.RunReq
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Error("run bind json failed", zap.Error(err))
		api.ResponseError(c, api.CodeInvalidParam)
		return
	}
	zap.L().Info("run",
		zap.Int("code_len", len(req.Code)),
		zap.Int64("time_limit_ms", req.TimeLimitMs),
		zap.Int64("memory_limit_mb", req.MemoryLimitMb))
	resp, err := service.CompileAndRun(c.Request.Context(), req)
	if err != nil {
		respondError(c, "run", err)
		return
	}
	api.ResponseSuccess(c, resp)
}

func DebugHandler(c *gin.Context) {
	var req *v1.DebugReq
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Error("debug bind json failed", zap.Error(err))
		api.ResponseError(c, api.CodeInvalidParam)
		return
	}
	zap.L().Info("debug",
		zap.Int("code_len", len(req.Code)),
		zap.Int("script_len", len(req.GdbScript)))
	resp, err := service.DebugWithGdb(c.Request.Context(), req)
	if err != nil {
		respondError(c, "debug", err)
		return
	}
	api.ResponseSuccess(c, resp)
}

func CompareHandler(c *gin.Context) {
	var req *v1.CompareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Error("compare bind json failed", zap.Error(err))
		api.ResponseError(c, api.CodeInvalidParam)
		return
	}
	verdict := service.CompareOutputs(req)
	api.ResponseSuccess(c, verdict)
}

func TestCaseHandler(c *gin.Context) {
	id := c.Param("id")
	tc, err := service.ReadTestCase(c.Request.Context(), id)
	if err != nil {
		respondError(c, "testcase", err)
		return
	}
	api.ResponseSuccess(c, &v1.TestCaseResp{
		ID:             tc.ID,
		Input:          tc.Input,
		ExpectedOutput: tc.Expected,
	})
}

// respondError 统一错误出口：队列超时单列，其余按结构化错误码映射
func respondError(c *gin.Context, op string, err error) {
	if stderrors.Is(err, service.ErrQueueFull) {
		zap.L().Warn(op+" queue full", zap.Error(err))
		api.ResponseError(c, api.CodeServerBusy)
		return
	}
	code := api.FromError(err)
	if code == api.CodeInternalError {
		zap.L().Error(op+" failed", zap.Error(err))
		api.ResponseError(c, code)
		return
	}
	zap.L().Info(op+" rejected", zap.Error(err))
	api.ResponseErrorWithMsg(c, code, err.Error())
}
