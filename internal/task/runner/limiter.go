package runner

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/internal/model"
	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// RunSpec 一次受限运行的描述
type RunSpec struct {
	ExePath string          // 可执行文件绝对路径
	Args    []string        // 参数向量（不经shell）
	Dir     string          // 工作目录
	Stdin   string          // 完整标准输入
	Limits  model.RunLimits // 资源限制

	// RLIMIT_FSIZE 上限（字节）。0 表示沿用 Limits.MaxOutputSize。
	// 编译器这类要落盘产物的进程需要比捕获预算更宽的文件上限。
	FileSizeLimit int64
}

// Limiter 资源受限的进程运行器。并发地实施三类限制：
// 墙钟看门狗、输出字节上限、内存上限，任何一个先触发即决定终止原因。
type Limiter struct {
	procLimit uint64 // RLIMIT_NPROC 上限
}

// NewLimiter 创建资源限制运行器
func NewLimiter(procLimit int) *Limiter {
	if procLimit <= 0 {
		procLimit = constants.DefaultProcLimit
	}
	return &Limiter{procLimit: uint64(procLimit)}
}

// Run 在资源限制下运行进程。限制触发属于正常可报告结局（RunResult.Cause），
// 返回 error 仅表示流水线自身故障（无法启动、调用方取消等）。
func (l *Limiter) Run(ctx context.Context, spec RunSpec) (*model.RunResult, error) {
	if spec.Limits.TimeLimit <= 0 || spec.Limits.MemoryLimit <= 0 || spec.Limits.MaxOutputSize <= 0 {
		return nil, errors.NewInvalidParamError("limits", "必须为正值")
	}

	cmd := exec.Command(spec.ExePath, spec.Args...)
	cmd.Dir = spec.Dir
	// 独立进程组：终止时连同全部后代一起处理
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdin = newClosedReader(spec.Stdin)
	// 进程退出后，残留后代持有的管道最多再等这么久
	cmd.WaitDelay = constants.WatchdogKillGrace

	// stdout/stderr 共享一份输出预算，超出即触发截断终止
	var trip tripwire
	capture := newCappedCapture(spec.Limits.MaxOutputSize, func() {
		trip.fire(model.CauseOutputTruncated)
	})
	cmd.Stdout = capture.stdout()
	cmd.Stderr = capture.stderr()

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, errors.NewSandboxError(fmt.Sprintf("启动进程失败: %s", spec.ExePath), err)
	}
	pid := cmd.Process.Pid
	trip.arm(pid)

	// 尽力施加内核级限制；不支持的平台上由监控协程兜底
	fsize := spec.FileSizeLimit
	if fsize <= 0 {
		fsize = spec.Limits.MaxOutputSize
	}
	l.applyRlimits(pid, spec.Limits, fsize)

	// 看门狗：墙钟超时强制终止整个进程组
	watchdog := time.AfterFunc(spec.Limits.TimeLimit, func() {
		trip.fire(model.CauseTimedOut)
	})
	defer watchdog.Stop()

	// 内存监控：周期采样RSS，超限即终止；同时记录峰值
	memDone := make(chan struct{})
	var peakRss int64
	go func() {
		defer close(memDone)
		peakRss = watchMemory(pid, spec.Limits.MemoryLimit, &trip)
	}()

	// 调用方取消：立即终止进程组，不允许子进程活过本次调用
	waitDone := make(chan struct{})
	var aborted atomic.Bool
	go func() {
		select {
		case <-ctx.Done():
			aborted.Store(true)
			trip.kill()
		case <-waitDone:
		}
	}()

	waitErr := cmd.Wait()
	close(waitDone)
	elapsed := time.Since(start)
	// 等待内存采样协程退出，拿到完整峰值
	trip.kill()
	<-memDone

	if aborted.Load() {
		return nil, errors.Wrap(errors.ErrCodeInternal, "调用被取消", ctx.Err())
	}

	result := l.buildResult(cmd, waitErr, elapsed, peakRss, &trip, capture, spec.Limits)
	return result, nil
}

// applyRlimits 对子进程施加内核资源限制（Linux prlimit）。
// 失败只降级为日志：监控协程仍然兜底，属于文档化的尽力而为。
func (l *Limiter) applyRlimits(pid int, limits model.RunLimits, fsize int64) {
	cpuSeconds := uint64(limits.TimeLimit/time.Second) + 1
	set := func(resource int, value uint64, name string) {
		rlim := unix.Rlimit{Cur: value, Max: value}
		if err := unix.Prlimit(pid, resource, &rlim, nil); err != nil {
			zap.L().Warn("施加rlimit失败", zap.String("resource", name), zap.Error(err))
		}
	}
	set(unix.RLIMIT_AS, uint64(limits.MemoryLimit), "RLIMIT_AS")
	set(unix.RLIMIT_CPU, cpuSeconds, "RLIMIT_CPU")
	set(unix.RLIMIT_NPROC, l.procLimit, "RLIMIT_NPROC")
	set(unix.RLIMIT_FSIZE, uint64(fsize), "RLIMIT_FSIZE")
}

// buildResult 汇总进程退出状态与各限制触发情况
func (l *Limiter) buildResult(cmd *exec.Cmd, waitErr error, elapsed time.Duration,
	peakRss int64, trip *tripwire, capture *cappedCapture, limits model.RunLimits) *model.RunResult {

	result := &model.RunResult{
		Stdout:     capture.stdoutString(),
		Stderr:     capture.stderrString(),
		TimeUsed:   elapsed,
		PeakMemory: peakRss,
		Truncated:  capture.truncated(),
	}

	var ws syscall.WaitStatus
	if state := cmd.ProcessState; state != nil {
		if s, ok := state.Sys().(syscall.WaitStatus); ok {
			ws = s
		}
		if ru, ok := state.SysUsage().(*syscall.Rusage); ok && ru != nil {
			// Maxrss 单位为KB，采样可能漏掉瞬时峰值，取两者较大者
			if rss := ru.Maxrss * 1024; rss > result.PeakMemory {
				result.PeakMemory = rss
			}
		}
	}

	// 限制器主动终止的，以先触发的原因为准
	if cause, tripped := trip.cause(); tripped {
		result.Cause = cause
		result.ExitCode = -1
		if ws.Signaled() {
			result.Signal = int(ws.Signal())
		}
		return result
	}

	if ws.Signaled() {
		result.Signal = int(ws.Signal())
		result.ExitCode = -1
		switch ws.Signal() {
		case syscall.SIGXCPU:
			// CPU rlimit 先于墙钟看门狗命中
			result.Cause = model.CauseTimedOut
		case syscall.SIGXFSZ:
			result.Cause = model.CauseOutputTruncated
		case syscall.SIGKILL, syscall.SIGSEGV, syscall.SIGABRT, syscall.SIGBUS:
			if result.PeakMemory >= limits.MemoryLimit {
				result.Cause = model.CauseMemoryExceeded
			} else {
				result.Cause = model.CauseCrashed
			}
		default:
			result.Cause = model.CauseCrashed
		}
		return result
	}

	// 正常退出：非零退出码仍是 completed，限制器未曾介入
	result.Cause = model.CauseCompleted
	result.ExitCode = ws.ExitStatus()
	if waitErr != nil && cmd.ProcessState == nil {
		zap.L().Warn("进程等待异常", zap.Error(waitErr))
	}
	return result
}

// watchMemory 周期采样子进程RSS，超限触发终止，返回观测到的峰值
func watchMemory(pid int, limit int64, trip *tripwire) int64 {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0
	}
	var peak int64
	ticker := time.NewTicker(constants.MemSampleInterval)
	defer ticker.Stop()
	for range ticker.C {
		mem, err := proc.MemoryInfo()
		if err != nil {
			// 进程已退出
			return peak
		}
		if rss := int64(mem.RSS); rss > peak {
			peak = rss
		}
		if peak >= limit {
			trip.fire(model.CauseMemoryExceeded)
			return peak
		}
		if done, _ := trip.done(); done {
			return peak
		}
	}
	return peak
}

// tripwire 记录首个触发的终止原因并终止进程组。
// 对已退出进程的终止是幂等空操作。
type tripwire struct {
	mu       sync.Mutex
	pid      int
	armed    bool
	tripped  bool
	killed   bool
	theCause model.TerminationCause
}

func (t *tripwire) arm(pid int) {
	t.mu.Lock()
	t.pid = pid
	t.armed = true
	t.mu.Unlock()
}

// fire 记录终止原因（仅首个生效）并终止进程组
func (t *tripwire) fire(cause model.TerminationCause) {
	t.mu.Lock()
	if !t.tripped {
		t.tripped = true
		t.theCause = cause
	}
	t.mu.Unlock()
	t.kill()
}

// kill 终止整个进程组；ESRCH（已不存在）静默忽略
func (t *tripwire) kill() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed {
		return
	}
	t.killed = true
	if err := syscall.Kill(-t.pid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		zap.L().Warn("终止进程组失败", zap.Int("pid", t.pid), zap.Error(err))
	}
}

func (t *tripwire) cause() (model.TerminationCause, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theCause, t.tripped
}

func (t *tripwire) done() (bool, model.TerminationCause) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.killed || t.tripped, t.theCause
}
