package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/internal/model"
	"github.com/hiturf/mcp-oi-assistant/internal/sandbox"
	"github.com/hiturf/mcp-oi-assistant/internal/task/runner"
	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
	"go.uber.org/zap"
)

// CppCompiler C++编译器。源码写入沙箱 sources 子区域，产物落在
// execute 子区域，调用经由命令校验与资源限制器。
type CppCompiler struct {
	CompilerPath string // g++ 可执行文件路径
	Standard     string // C++标准（如 c++17）
	Optimization string // 优化选项（如 -O2）

	ws      *sandbox.Workspace
	guard   *sandbox.CommandGuard
	limiter *runner.Limiter
}

// NewCppCompiler 创建C++编译器
func NewCppCompiler(ws *sandbox.Workspace, guard *sandbox.CommandGuard, limiter *runner.Limiter,
	compilerPath, standard, optimization string) *CppCompiler {
	if compilerPath == "" {
		compilerPath = constants.DefaultCompilerPath
	}
	if standard == "" {
		standard = constants.DefaultCppStandard
	}
	if optimization == "" {
		optimization = constants.DefaultOptimization
	}
	return &CppCompiler{
		CompilerPath: compilerPath,
		Standard:     standard,
		Optimization: optimization,
		ws:           ws,
		guard:        guard,
		limiter:      limiter,
	}
}

// Compile 编译C++源码。safeName 须是已清洗、带唯一后缀的文件名主体。
// 编译器非零退出不是流水线故障：返回 Success=false 的结果，
// 诊断信息原样携带编译器 stderr。
// debug 为真时以 -O0 -g 编译（供调试会话使用）。
func (c *CppCompiler) Compile(ctx context.Context, sourceText, safeName string, debug bool) (*model.CompileResult, error) {
	if sourceText == "" {
		return nil, errors.NewInvalidParamError("code", "源代码为空")
	}
	if len(sourceText) > constants.MaxSourceCodeSize {
		return nil, errors.NewInvalidParamError("code",
			fmt.Sprintf("源代码过大（上限%d字节）", constants.MaxSourceCodeSize))
	}

	srcPath, err := c.ws.WriteFile(safeName+constants.SourceExtension,
		constants.AreaSources, []byte(sourceText), constants.CodeFilePerm)
	if err != nil {
		return nil, err
	}
	exePath, err := c.ws.Resolve(safeName, constants.AreaExecute)
	if err != nil {
		return nil, err
	}

	args := c.buildArgs(srcPath, exePath, debug)
	if err := c.guard.Check(c.CompilerPath, args); err != nil {
		return nil, err
	}

	// 编译预算固定，独立于调用方的运行时间限制
	runResult, err := c.limiter.Run(ctx, runner.RunSpec{
		ExePath: c.CompilerPath,
		Args:    args,
		Dir:     filepath.Dir(srcPath),
		Limits: model.RunLimits{
			TimeLimit:     constants.MaxCompileTimeout,
			MemoryLimit:   constants.MaxMemoryLimit,
			MaxOutputSize: constants.CompileOutputLimit,
		},
		// 编译产物要落盘，文件上限须比诊断捕获预算宽
		FileSizeLimit: constants.CompileArtifactLimit,
	})
	if err != nil {
		return nil, err
	}

	result := &model.CompileResult{
		ExitCode:    runResult.ExitCode,
		Diagnostics: runResult.Stderr,
	}
	switch {
	case runResult.Cause == model.CauseTimedOut:
		result.Diagnostics = fmt.Sprintf("编译超时（%v）", constants.MaxCompileTimeout)
	case runResult.Cause != model.CauseCompleted:
		result.Diagnostics = fmt.Sprintf("编译器异常终止（%s）\n%s", runResult.Cause, runResult.Stderr)
	case runResult.ExitCode != 0:
		// 诊断信息原样返回，这是失败时对调用方的主要反馈通道
	default:
		if _, statErr := os.Stat(exePath); statErr != nil {
			result.Diagnostics = fmt.Sprintf("编译后可执行文件未生成: %s", filepath.Base(exePath))
		} else {
			result.Success = true
			result.ExePath = exePath
		}
	}

	if result.Success {
		zap.L().Info("C++编译成功",
			zap.String("source", filepath.Base(srcPath)),
			zap.String("exe", filepath.Base(exePath)),
		)
	} else {
		zap.L().Warn("C++编译失败",
			zap.String("source", filepath.Base(srcPath)),
			zap.Int("exit_code", runResult.ExitCode),
		)
	}
	return result, nil
}

// buildArgs 构造编译参数向量（绝不拼接为命令行字符串）
func (c *CppCompiler) buildArgs(srcPath, exePath string, debug bool) []string {
	args := []string{srcPath, constants.StandardFlagPrefix + c.Standard}
	if debug {
		args = append(args, constants.DebugOptimization, constants.DebugSymbolFlag)
	} else {
		args = append(args, c.Optimization)
	}
	args = append(args, "-o", exePath)
	args = append(args, strings.Fields(constants.CompileWarningFlags)...)
	return args
}
