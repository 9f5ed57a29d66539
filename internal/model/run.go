package model

import "time"

// TerminationCause 进程终止原因
type TerminationCause = string

const (
	CauseCompleted       TerminationCause = "completed"        // 进程自行退出（退出码可能非0）
	CauseTimedOut        TerminationCause = "timed_out"        // 墙钟/CPU时间超限被终止
	CauseMemoryExceeded  TerminationCause = "memory_exceeded"  // 内存超限被终止
	CauseOutputTruncated TerminationCause = "output_truncated" // 输出超限被终止
	CauseCrashed         TerminationCause = "crashed"          // 信号异常退出（非限制器触发）
)

// RunLimits 单次运行的资源限制
type RunLimits struct {
	TimeLimit     time.Duration `json:"time_limit"`      // 墙钟时间限制
	MemoryLimit   int64         `json:"memory_limit"`    // 内存限制（字节）
	MaxOutputSize int64         `json:"max_output_size"` // stdout+stderr 总输出上限（字节）
}

// RunResult 单次受限运行的结果
type RunResult struct {
	Stdout     string           `json:"stdout"`      // 捕获的标准输出（最多MaxOutputSize）
	Stderr     string           `json:"stderr"`      // 捕获的标准错误
	ExitCode   int              `json:"exit_code"`   // 进程退出码
	Signal     int              `json:"signal"`      // 终止信号（无则为0）
	TimeUsed   time.Duration    `json:"time_used"`   // 实际墙钟耗时
	PeakMemory int64            `json:"peak_memory"` // 峰值内存（字节，0表示不可得）
	Cause      TerminationCause `json:"cause"`       // 终止原因
	Truncated  bool             `json:"truncated"`   // 输出是否被截断
}

// Exceeded 判断运行是否被任一限制终止
func (r *RunResult) Exceeded() bool {
	return r.Cause == CauseTimedOut || r.Cause == CauseMemoryExceeded || r.Cause == CauseOutputTruncated
}

// CompileResult 编译结果
type CompileResult struct {
	Success     bool   `json:"success"`     // 是否编译成功
	ExePath     string `json:"-"`           // 可执行文件路径（仅成功时有效，不外传）
	Diagnostics string `json:"diagnostics"` // 编译器诊断信息（stderr原文）
	ExitCode    int    `json:"exit_code"`   // 编译器退出码
}

// DebugSession GDB调试会话结果
type DebugSession struct {
	Transcript string `json:"transcript"` // 调试器输出
	Errors     string `json:"errors"`     // 调试器错误输出
	ExitCode   int    `json:"exit_code"`  // GDB退出码
	TimedOut   bool   `json:"timed_out"`  // 会话是否超时被终止
}
