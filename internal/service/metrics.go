package service

import (
	"sync/atomic"
	"time"

	"github.com/hiturf/mcp-oi-assistant/internal/model"
)

// JudgeMetrics 评测统计指标
type JudgeMetrics struct {
	// 计数器
	TotalInvocations int64 // 总调用数
	SuccessCount     int64 // 正常完成数
	FailureCount     int64 // 流水线故障数

	// 各结局统计
	CompletedCount int64 // 进程自行退出
	TimedOutCount  int64 // 时间超限
	MemoryCount    int64 // 内存超限
	TruncatedCount int64 // 输出超限
	CrashedCount   int64 // 信号崩溃
	CompileFailed  int64 // 编译失败
	DeniedCount    int64 // 安全策略拒绝（路径/命令）

	// 性能指标
	TotalJudgeTime int64 // 总评测时间（毫秒）
	MaxJudgeTime   int64 // 最大评测时间（毫秒）

	// 资源使用
	CurrentActive     int32 // 当前活跃评测数
	QueueTimeoutCount int64 // 队列超时次数

	// 时间戳
	StartTime time.Time // 启动时间
}

var globalMetrics = &JudgeMetrics{
	StartTime: time.Now(),
}

// GetGlobalMetrics 获取全局统计实例
func GetGlobalMetrics() *JudgeMetrics {
	return globalMetrics
}

// RecordInvocation 记录一次调用
func (m *JudgeMetrics) RecordInvocation() {
	atomic.AddInt64(&m.TotalInvocations, 1)
}

// RecordOutcome 记录一次正常出结果的调用及其终止原因
func (m *JudgeMetrics) RecordOutcome(judgeTime time.Duration, cause model.TerminationCause) {
	atomic.AddInt64(&m.SuccessCount, 1)

	switch cause {
	case model.CauseCompleted:
		atomic.AddInt64(&m.CompletedCount, 1)
	case model.CauseTimedOut:
		atomic.AddInt64(&m.TimedOutCount, 1)
	case model.CauseMemoryExceeded:
		atomic.AddInt64(&m.MemoryCount, 1)
	case model.CauseOutputTruncated:
		atomic.AddInt64(&m.TruncatedCount, 1)
	case model.CauseCrashed:
		atomic.AddInt64(&m.CrashedCount, 1)
	}

	judgeTimeMs := judgeTime.Milliseconds()
	atomic.AddInt64(&m.TotalJudgeTime, judgeTimeMs)
	for {
		oldMax := atomic.LoadInt64(&m.MaxJudgeTime)
		if judgeTimeMs <= oldMax {
			break
		}
		if atomic.CompareAndSwapInt64(&m.MaxJudgeTime, oldMax, judgeTimeMs) {
			break
		}
	}
}

// RecordCompileFailure 记录编译失败
func (m *JudgeMetrics) RecordCompileFailure() {
	atomic.AddInt64(&m.CompileFailed, 1)
}

// RecordDenied 记录安全策略拒绝
func (m *JudgeMetrics) RecordDenied() {
	atomic.AddInt64(&m.DeniedCount, 1)
}

// RecordFailure 记录流水线故障
func (m *JudgeMetrics) RecordFailure() {
	atomic.AddInt64(&m.FailureCount, 1)
}

// RecordQueueTimeout 记录队列超时
func (m *JudgeMetrics) RecordQueueTimeout() {
	atomic.AddInt64(&m.QueueTimeoutCount, 1)
}

// RecordActiveIncrease 记录活跃评测增加
func (m *JudgeMetrics) RecordActiveIncrease() int32 {
	return atomic.AddInt32(&m.CurrentActive, 1)
}

// RecordActiveDecrease 记录活跃评测减少
func (m *JudgeMetrics) RecordActiveDecrease() int32 {
	return atomic.AddInt32(&m.CurrentActive, -1)
}

// Snapshot 指标快照（用于监控接口）
type Snapshot struct {
	TotalInvocations  int64   `json:"total_invocations"`
	SuccessCount      int64   `json:"success_count"`
	FailureCount      int64   `json:"failure_count"`
	CompletedCount    int64   `json:"completed_count"`
	TimedOutCount     int64   `json:"timed_out_count"`
	MemoryCount       int64   `json:"memory_exceeded_count"`
	TruncatedCount    int64   `json:"output_truncated_count"`
	CrashedCount      int64   `json:"crashed_count"`
	CompileFailed     int64   `json:"compile_failed_count"`
	DeniedCount       int64   `json:"denied_count"`
	AvgJudgeTimeMs    int64   `json:"avg_judge_time_ms"`
	MaxJudgeTimeMs    int64   `json:"max_judge_time_ms"`
	CurrentActive     int32   `json:"current_active"`
	QueueTimeoutCount int64   `json:"queue_timeout_count"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// GetSnapshot 获取当前指标快照
func (m *JudgeMetrics) GetSnapshot() Snapshot {
	success := atomic.LoadInt64(&m.SuccessCount)
	total := atomic.LoadInt64(&m.TotalJudgeTime)
	var avg int64
	if success > 0 {
		avg = total / success
	}
	return Snapshot{
		TotalInvocations:  atomic.LoadInt64(&m.TotalInvocations),
		SuccessCount:      success,
		FailureCount:      atomic.LoadInt64(&m.FailureCount),
		CompletedCount:    atomic.LoadInt64(&m.CompletedCount),
		TimedOutCount:     atomic.LoadInt64(&m.TimedOutCount),
		MemoryCount:       atomic.LoadInt64(&m.MemoryCount),
		TruncatedCount:    atomic.LoadInt64(&m.TruncatedCount),
		CrashedCount:      atomic.LoadInt64(&m.CrashedCount),
		CompileFailed:     atomic.LoadInt64(&m.CompileFailed),
		DeniedCount:       atomic.LoadInt64(&m.DeniedCount),
		AvgJudgeTimeMs:    avg,
		MaxJudgeTimeMs:    atomic.LoadInt64(&m.MaxJudgeTime),
		CurrentActive:     atomic.LoadInt32(&m.CurrentActive),
		QueueTimeoutCount: atomic.LoadInt64(&m.QueueTimeoutCount),
		UptimeSeconds:     time.Since(m.StartTime).Seconds(),
	}
}
