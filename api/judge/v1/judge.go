package v1

import "github.com/hiturf/mcp-oi-assistant/internal/model"

// RunReq 编译并运行请求
type RunReq struct {
	Code           string  `json:"code" binding:"required"`
	Input          string  `json:"input"`
	ExpectedOutput *string `json:"expected_output"` // 提供则附带比较结论
	Filename       string  `json:"filename"`        // 可选；派生而非原样使用
	TimeLimitMs    int64   `json:"time_limit_ms"`   // 缺省5000
	MemoryLimitMb  int64   `json:"memory_limit_mb"` // 缺省256
}

// RunResp 编译并运行响应
type RunResp struct {
	InvocationID string                   `json:"invocation_id"`
	Compile      *model.CompileResult     `json:"compile"`
	Run          *RunPayload              `json:"run,omitempty"`
	Comparison   *model.ComparisonVerdict `json:"comparison,omitempty"`
}

// RunPayload 运行阶段的外传结果
type RunPayload struct {
	Stdout       string `json:"stdout"`
	Stderr       string `json:"stderr"`
	ExitCode     int    `json:"exit_code"`
	TimeUsedMs   int64  `json:"time_used_ms"`
	PeakMemoryKb int64  `json:"peak_memory_kb"`
	Cause        string `json:"cause"`
	Truncated    bool   `json:"truncated"`
}

// DebugReq GDB调试请求
type DebugReq struct {
	Code      string `json:"code" binding:"required"`
	GdbScript string `json:"gdb_script"`
}

// DebugResp GDB调试响应
type DebugResp struct {
	InvocationID string               `json:"invocation_id"`
	Compile      *model.CompileResult `json:"compile"`
	Session      *model.DebugSession  `json:"session,omitempty"`
}

// CompareReq 输出比较请求
type CompareReq struct {
	Actual           string `json:"actual"`
	Expected         string `json:"expected"`
	IgnoreWhitespace *bool  `json:"ignore_whitespace"` // 缺省true
	IgnoreCase       *bool  `json:"ignore_case"`       // 缺省false
}

// TestCaseResp 测试用例读取响应
type TestCaseResp struct {
	ID             string `json:"id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}
