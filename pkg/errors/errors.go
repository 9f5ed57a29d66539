package errors

import (
	"errors"
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode int

const (
	// 系统错误 (1000-1999)
	ErrCodeSystem ErrorCode = 1000 + iota
	ErrCodeInternal
	ErrCodeConfiguration
	ErrCodeNotFound

	// 参数错误 (2000-2999)
	ErrCodeInvalidParam ErrorCode = 2000 + iota
	ErrCodeInvalidTimeLimit
	ErrCodeInvalidMemoryLimit
	ErrCodeInvalidTestCaseID

	// 安全违规 (3000-3999)：命中即拒绝，绝不启动子进程
	ErrCodePathViolation ErrorCode = 3000 + iota
	ErrCodeCommandDenied

	// 编译错误 (4000-4999)
	ErrCodeCompileFailure ErrorCode = 4000 + iota
	ErrCodeCompilerNotFound
	ErrCodeCompileTimeout

	// 运行结果 (5000-5999)：属于可报告的执行结局，不是流水线故障
	ErrCodeTimedOut ErrorCode = 5000 + iota
	ErrCodeMemoryExceeded
	ErrCodeOutputTruncated
	ErrCodeRuntimeCrash
	ErrCodeSandboxFailed
)

// JudgeError 结构化错误：机器可读的错误种类 + 上下文
type JudgeError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *JudgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持错误链
func (e *JudgeError) Unwrap() error {
	return e.Err
}

// New 创建新错误
func New(code ErrorCode, message string) *JudgeError {
	return &JudgeError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装已有错误
func Wrap(code ErrorCode, message string, err error) *JudgeError {
	return &JudgeError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 预定义的错误创建函数

// NewPathViolation 创建路径越界错误
func NewPathViolation(name string, reason string) *JudgeError {
	return New(ErrCodePathViolation, fmt.Sprintf("路径 %q 被拒绝: %s", name, reason))
}

// NewCommandDenied 创建命令拒绝错误
func NewCommandDenied(reason string) *JudgeError {
	return New(ErrCodeCommandDenied, fmt.Sprintf("命令被安全策略拒绝: %s", reason))
}

// NewCompileFailure 创建编译失败错误（携带编译器诊断原文）
func NewCompileFailure(diagnostics string) *JudgeError {
	return New(ErrCodeCompileFailure, diagnostics)
}

// NewInvalidParamError 创建参数错误
func NewInvalidParamError(param string, reason string) *JudgeError {
	return New(ErrCodeInvalidParam, fmt.Sprintf("参数 %s 无效: %s", param, reason))
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(what string) *JudgeError {
	return New(ErrCodeNotFound, fmt.Sprintf("未找到: %s", what))
}

// NewConfigurationError 创建配置错误（启动期致命）
func NewConfigurationError(key string, reason string) *JudgeError {
	return New(ErrCodeConfiguration, fmt.Sprintf("配置项 %s 无效: %s", key, reason))
}

// NewSandboxError 创建沙箱运行错误
func NewSandboxError(message string, err error) *JudgeError {
	return Wrap(ErrCodeSandboxFailed, message, err)
}

// IsErrorCode 判断错误是否为指定错误码
func IsErrorCode(err error, code ErrorCode) bool {
	var judgeErr *JudgeError
	if errors.As(err, &judgeErr) {
		return judgeErr.Code == code
	}
	return false
}

// GetErrorCode 获取错误码
func GetErrorCode(err error) ErrorCode {
	var judgeErr *JudgeError
	if errors.As(err, &judgeErr) {
		return judgeErr.Code
	}
	return ErrCodeInternal
}
