package debugger

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/internal/model"
	"github.com/hiturf/mcp-oi-assistant/internal/sandbox"
	"github.com/hiturf/mcp-oi-assistant/internal/task/runner"
	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
	"go.uber.org/zap"
)

// GdbDebugger 批处理式GDB调试会话。脚本写入沙箱 scripts 子区域，
// 以 --batch 模式执行，会话时长与输出量与执行器同等受限。
// 调试本质上开放无界，因此会话超时是固定值，不接受调用方放宽。
type GdbDebugger struct {
	GdbPath string

	ws          *sandbox.Workspace
	guard       *sandbox.CommandGuard
	limiter     *runner.Limiter
	outputLimit int64 // 会话输出上限，沿用 judge.max_output_size
}

// NewGdbDebugger 创建GDB调试器
func NewGdbDebugger(ws *sandbox.Workspace, guard *sandbox.CommandGuard, limiter *runner.Limiter,
	gdbPath string, outputLimit int64) *GdbDebugger {
	if gdbPath == "" {
		gdbPath = constants.DefaultGdbPath
	}
	if outputLimit <= 0 {
		outputLimit = constants.DefaultMaxOutputSize
	}
	return &GdbDebugger{GdbPath: gdbPath, ws: ws, guard: guard, limiter: limiter, outputLimit: outputLimit}
}

// Debug 对已编译的产物启动一次GDB批处理会话。
// script 为空时使用默认脚本（断在main、回溯、寄存器、反汇编片段）。
func (d *GdbDebugger) Debug(ctx context.Context, exePath, safeName, script string) (*model.DebugSession, error) {
	if len(script) > constants.MaxGdbScriptSize {
		return nil, errors.NewInvalidParamError("gdb_script",
			fmt.Sprintf("脚本过大（上限%d字节）", constants.MaxGdbScriptSize))
	}
	if script == "" {
		script = constants.DefaultGdbScript
	}

	scriptPath, err := d.ws.WriteFile(safeName+constants.GdbExtension,
		constants.AreaScripts, []byte(script), constants.ScriptFilePerm)
	if err != nil {
		return nil, err
	}
	defer d.ws.Remove(scriptPath)

	args := []string{"-x", scriptPath, exePath, "--batch"}
	if err := d.guard.Check(d.GdbPath, args); err != nil {
		return nil, err
	}
	execDir, err := d.ws.AreaDir(constants.AreaExecute)
	if err != nil {
		return nil, err
	}

	runResult, err := d.limiter.Run(ctx, runner.RunSpec{
		ExePath: d.GdbPath,
		Args:    args,
		Dir:     execDir,
		Limits: model.RunLimits{
			TimeLimit:     constants.MaxDebugTimeout,
			MemoryLimit:   constants.MaxMemoryLimit,
			MaxOutputSize: d.outputLimit,
		},
	})
	if err != nil {
		return nil, err
	}

	session := &model.DebugSession{
		Transcript: runResult.Stdout,
		Errors:     runResult.Stderr,
		ExitCode:   runResult.ExitCode,
		TimedOut:   runResult.Cause == model.CauseTimedOut,
	}
	zap.L().Info("GDB调试会话结束",
		zap.String("exe", filepath.Base(exePath)),
		zap.String("cause", runResult.Cause),
		zap.Int("exit_code", runResult.ExitCode),
	)
	return session, nil
}
