package api

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ResCode
	}{
		{"路径违规", errors.NewPathViolation("../x", "越界"), CodePathViolation},
		{"命令拒绝", errors.NewCommandDenied("清单外"), CodeCommandDenied},
		{"未找到", errors.NewNotFoundError("测试用例 x"), CodeNotFound},
		{"参数错误", errors.NewInvalidParamError("code", "为空"), CodeInvalidParam},
		{"时间限制错误", errors.New(errors.ErrCodeInvalidTimeLimit, "负值"), CodeInvalidParam},
		{"普通错误", stderrors.New("boom"), CodeInternalError},
		{"包装后仍可识别", fmt.Errorf("外层: %w", errors.NewCommandDenied("x")), CodeCommandDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromError(tt.err); got != tt.want {
				t.Errorf("FromError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResCode_Msg(t *testing.T) {
	if CodeSuccess.Msg() != "success" {
		t.Errorf("CodeSuccess.Msg() = %q", CodeSuccess.Msg())
	}
	// 未登记的返回码回落到兜底文案
	if ResCode(99999).Msg() == "" {
		t.Error("未知返回码的文案为空")
	}
}
