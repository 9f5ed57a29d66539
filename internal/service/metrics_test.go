package service

import (
	"testing"
	"time"

	"github.com/hiturf/mcp-oi-assistant/internal/model"
)

func TestJudgeMetrics_RecordInvocation(t *testing.T) {
	metrics := &JudgeMetrics{StartTime: time.Now()}

	metrics.RecordInvocation()
	metrics.RecordInvocation()
	metrics.RecordInvocation()

	if metrics.TotalInvocations != 3 {
		t.Errorf("TotalInvocations = %d, want 3", metrics.TotalInvocations)
	}
}

func TestJudgeMetrics_RecordOutcome(t *testing.T) {
	metrics := &JudgeMetrics{StartTime: time.Now()}

	// 记录各种终止原因的评测
	metrics.RecordOutcome(100*time.Millisecond, model.CauseCompleted)
	metrics.RecordOutcome(200*time.Millisecond, model.CauseTimedOut)
	metrics.RecordOutcome(150*time.Millisecond, model.CauseMemoryExceeded)
	metrics.RecordOutcome(50*time.Millisecond, model.CauseOutputTruncated)
	metrics.RecordOutcome(80*time.Millisecond, model.CauseCrashed)

	if metrics.SuccessCount != 5 {
		t.Errorf("SuccessCount = %d, want 5", metrics.SuccessCount)
	}
	if metrics.CompletedCount != 1 {
		t.Errorf("CompletedCount = %d, want 1", metrics.CompletedCount)
	}
	if metrics.TimedOutCount != 1 {
		t.Errorf("TimedOutCount = %d, want 1", metrics.TimedOutCount)
	}
	if metrics.MemoryCount != 1 {
		t.Errorf("MemoryCount = %d, want 1", metrics.MemoryCount)
	}
	if metrics.TruncatedCount != 1 {
		t.Errorf("TruncatedCount = %d, want 1", metrics.TruncatedCount)
	}
	if metrics.CrashedCount != 1 {
		t.Errorf("CrashedCount = %d, want 1", metrics.CrashedCount)
	}

	// 检查时间统计
	if metrics.MaxJudgeTime != 200 {
		t.Errorf("MaxJudgeTime = %d, want 200", metrics.MaxJudgeTime)
	}
	if metrics.TotalJudgeTime != 580 {
		t.Errorf("TotalJudgeTime = %d, want 580", metrics.TotalJudgeTime)
	}
}

func TestJudgeMetrics_ActiveCounter(t *testing.T) {
	metrics := &JudgeMetrics{StartTime: time.Now()}

	if got := metrics.RecordActiveIncrease(); got != 1 {
		t.Errorf("RecordActiveIncrease() = %d, want 1", got)
	}
	metrics.RecordActiveIncrease()
	if got := metrics.RecordActiveDecrease(); got != 1 {
		t.Errorf("RecordActiveDecrease() = %d, want 1", got)
	}
}

func TestJudgeMetrics_GetSnapshot(t *testing.T) {
	metrics := &JudgeMetrics{StartTime: time.Now().Add(-time.Minute)}

	metrics.RecordInvocation()
	metrics.RecordOutcome(100*time.Millisecond, model.CauseCompleted)
	metrics.RecordOutcome(300*time.Millisecond, model.CauseCompleted)
	metrics.RecordCompileFailure()
	metrics.RecordDenied()
	metrics.RecordQueueTimeout()

	snap := metrics.GetSnapshot()
	if snap.SuccessCount != 2 {
		t.Errorf("SuccessCount = %d, want 2", snap.SuccessCount)
	}
	if snap.AvgJudgeTimeMs != 200 {
		t.Errorf("AvgJudgeTimeMs = %d, want 200", snap.AvgJudgeTimeMs)
	}
	if snap.CompileFailed != 1 || snap.DeniedCount != 1 || snap.QueueTimeoutCount != 1 {
		t.Errorf("计数快照不一致: %+v", snap)
	}
	if snap.UptimeSeconds < 59 {
		t.Errorf("UptimeSeconds = %f, want >= 59", snap.UptimeSeconds)
	}
}
