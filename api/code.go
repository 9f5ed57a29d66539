package api

import "github.com/hiturf/mcp-oi-assistant/pkg/errors"

// ResCode 定义返回码类型
type ResCode int64

// 业务返回码。安全违规与资源类错误分开编号，便于调用方分流处理。
const (
	CodeSuccess       ResCode = 0
	CodeInvalidParam  ResCode = 4000
	CodePathViolation ResCode = 4030
	CodeCommandDenied ResCode = 4031
	CodeNotFound      ResCode = 4040

	CodeNeedLogin    ResCode = 4100
	CodeInvalidToken ResCode = 4200

	CodeServerBusy    ResCode = 5000
	CodeInternalError ResCode = 5001
)

var codeMsgMap = map[ResCode]string{
	CodeSuccess:       "success",
	CodeInvalidParam:  "请求参数错误",
	CodePathViolation: "路径越出沙箱，已拒绝",
	CodeCommandDenied: "命令被安全策略拒绝",
	CodeNotFound:      "未找到",

	CodeNeedLogin:    "需要认证",
	CodeInvalidToken: "无效的token",

	CodeServerBusy:    "服务繁忙",
	CodeInternalError: "内部错误",
}

func (c ResCode) Msg() string {
	msg, ok := codeMsgMap[c]
	if !ok {
		msg = codeMsgMap[CodeServerBusy]
	}
	return msg
}

// FromError 将结构化错误映射为业务返回码
func FromError(err error) ResCode {
	switch errors.GetErrorCode(err) {
	case errors.ErrCodePathViolation:
		return CodePathViolation
	case errors.ErrCodeCommandDenied:
		return CodeCommandDenied
	case errors.ErrCodeNotFound:
		return CodeNotFound
	case errors.ErrCodeInvalidParam, errors.ErrCodeInvalidTimeLimit,
		errors.ErrCodeInvalidMemoryLimit, errors.ErrCodeInvalidTestCaseID:
		return CodeInvalidParam
	default:
		return CodeInternalError
	}
}
