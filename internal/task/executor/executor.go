package executor

import (
	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/internal/model"
	"github.com/hiturf/mcp-oi-assistant/internal/sandbox"
	"github.com/hiturf/mcp-oi-assistant/internal/task/runner"
	"go.uber.org/zap"

	"context"
)

// Executor 已编译产物的非交互批处理执行：输入一次性写入标准输入，
// 之后只观察进程的终端行为，不做任何交互。
type Executor struct {
	ws      *sandbox.Workspace
	guard   *sandbox.CommandGuard
	limiter *runner.Limiter
}

// NewExecutor 创建执行器
func NewExecutor(ws *sandbox.Workspace, guard *sandbox.CommandGuard, limiter *runner.Limiter) *Executor {
	return &Executor{ws: ws, guard: guard, limiter: limiter}
}

// Execute 在资源限制下运行可执行产物
func (e *Executor) Execute(ctx context.Context, exePath, input string, limits model.RunLimits) (*model.RunResult, error) {
	// 产物必须位于沙箱 execute 子区域，这里复核而非信任调用方
	if err := e.guard.Check(exePath, nil); err != nil {
		return nil, err
	}
	execDir, err := e.ws.AreaDir(constants.AreaExecute)
	if err != nil {
		return nil, err
	}

	result, err := e.limiter.Run(ctx, runner.RunSpec{
		ExePath: exePath,
		Dir:     execDir,
		Stdin:   input,
		Limits:  limits,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Debug("执行完成",
		zap.String("cause", result.Cause),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("time_used", result.TimeUsed),
		zap.Int64("peak_memory", result.PeakMemory),
	)
	return result, nil
}
