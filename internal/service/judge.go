package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	v1 "github.com/hiturf/mcp-oi-assistant/api/judge/v1"
	"github.com/hiturf/mcp-oi-assistant/internal/conf"
	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/internal/model"
	"github.com/hiturf/mcp-oi-assistant/internal/sandbox"
	"github.com/hiturf/mcp-oi-assistant/internal/task/compiler"
	"github.com/hiturf/mcp-oi-assistant/internal/task/debugger"
	"github.com/hiturf/mcp-oi-assistant/internal/task/executor"
	"github.com/hiturf/mcp-oi-assistant/internal/task/result"
	"github.com/hiturf/mcp-oi-assistant/internal/task/runner"
	"github.com/hiturf/mcp-oi-assistant/internal/testcase"
	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
	"github.com/hiturf/mcp-oi-assistant/pkg/snowflake"
)

// ErrQueueFull 并发槽位等待超时
var ErrQueueFull = stderrors.New("评测队列已满")

var (
	judgeCfg  *conf.JudgeConfig
	ws        *sandbox.Workspace
	cpp       *compiler.CppCompiler
	exe       *executor.Executor
	dbg       *debugger.GdbDebugger
	caseStore testcase.Store
	sem       chan struct{} // 并发槽位，容量为 MaxConcurrent
)

// Init 初始化评测流水线：沙箱、工具链、测试用例存储与并发槽位
func Init(cfg *viper.Viper) error {
	judgeCfg = conf.LoadJudgeConfig(cfg)
	compileCfg := conf.LoadCompileConfig(cfg)
	caseCfg := conf.LoadTestCaseConfig(cfg)

	var err error
	ws, err = sandbox.NewWorkspace(judgeCfg.SandboxRoot)
	if err != nil {
		return fmt.Errorf("初始化沙箱失败: %w", err)
	}

	limiter := runner.NewLimiter(judgeCfg.ProcLimit)
	guard := sandbox.NewCommandGuard(ws, compileCfg.CompilerPath, compileCfg.GdbPath)
	cpp = compiler.NewCppCompiler(ws, guard, limiter,
		compileCfg.CompilerPath, compileCfg.CppStandard, compileCfg.Optimization)
	exe = executor.NewExecutor(ws, guard, limiter)
	dbg = debugger.NewGdbDebugger(ws, guard, limiter, compileCfg.GdbPath, judgeCfg.MaxOutputSize)

	switch caseCfg.Backend {
	case "minio":
		caseStore, err = testcase.NewMinioStore(testcase.MinioOptions{
			Endpoint:  caseCfg.MinioEndpoint,
			AccessKey: caseCfg.MinioAccessKey,
			SecretKey: caseCfg.MinioSecretKey,
			UseSSL:    caseCfg.MinioUseSSL,
			Bucket:    caseCfg.MinioBucket,
		})
	case "local", "":
		caseStore, err = testcase.NewLocalStore(caseCfg.Dir)
	default:
		err = errors.NewConfigurationError("testcase.backend", "未知的存储后端: "+caseCfg.Backend)
	}
	if err != nil {
		return fmt.Errorf("初始化测试用例存储失败: %w", err)
	}

	maxConcurrent := judgeCfg.MaxConcurrent
	if maxConcurrent < constants.MinConcurrent {
		maxConcurrent = constants.DefaultMaxConcurrent
	}
	sem = make(chan struct{}, maxConcurrent)

	zap.L().Info("评测服务初始化完成",
		zap.String("sandbox_root", ws.Root()),
		zap.Int("max_concurrent", maxConcurrent),
		zap.String("testcase_backend", caseCfg.Backend))
	return nil
}

// MustInit 初始化评测流水线，失败直接panic
func MustInit(cfg *viper.Viper) {
	if err := Init(cfg); err != nil {
		panic(err)
	}
}

// acquire 等待一个并发槽位。队列等待有上限，避免请求无限堆积
func acquire(ctx context.Context) (func(), error) {
	timer := time.NewTimer(constants.QueueWaitTimeout)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		active := GetGlobalMetrics().RecordActiveIncrease()
		zap.L().Debug("获取评测槽位", zap.Int32("active", active))
		return func() {
			<-sem
			GetGlobalMetrics().RecordActiveDecrease()
		}, nil
	case <-timer.C:
		GetGlobalMetrics().RecordQueueTimeout()
		return nil, ErrQueueFull
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// normalizeLimits 归一化请求中的资源限制。
// 非正值视为参数错误；超过上限的值收敛到上限，而不是报错。
func normalizeLimits(timeLimitMs, memoryLimitMb int64) (model.RunLimits, error) {
	var limits model.RunLimits

	switch {
	case timeLimitMs == 0:
		limits.TimeLimit = judgeCfg.DefaultTime
	case timeLimitMs < 0:
		return limits, errors.New(errors.ErrCodeInvalidTimeLimit,
			fmt.Sprintf("时间限制必须为正值: %d", timeLimitMs))
	default:
		limits.TimeLimit = time.Duration(timeLimitMs) * time.Millisecond
	}
	if limits.TimeLimit < constants.MinTimeLimit {
		limits.TimeLimit = constants.MinTimeLimit
	}
	if limits.TimeLimit > judgeCfg.MaxTime {
		limits.TimeLimit = judgeCfg.MaxTime
	}

	switch {
	case memoryLimitMb == 0:
		limits.MemoryLimit = judgeCfg.DefaultMemory
	case memoryLimitMb < 0:
		return limits, errors.New(errors.ErrCodeInvalidMemoryLimit,
			fmt.Sprintf("内存限制必须为正值: %d", memoryLimitMb))
	default:
		limits.MemoryLimit = memoryLimitMb * 1024 * 1024
	}
	if limits.MemoryLimit < constants.MinMemoryLimit {
		limits.MemoryLimit = constants.MinMemoryLimit
	}
	if limits.MemoryLimit > judgeCfg.MaxMemory {
		limits.MemoryLimit = judgeCfg.MaxMemory
	}

	limits.MaxOutputSize = judgeCfg.MaxOutputSize
	if limits.MaxOutputSize <= 0 {
		limits.MaxOutputSize = constants.DefaultMaxOutputSize
	}
	return limits, nil
}

// deriveName 由调用方文件名与唯一ID派生沙箱内文件名主体。
// 调用方文件名只取其中的安全字符，绝不原样落盘。
func deriveName(filename string, id int64) string {
	base := "program"
	if filename != "" {
		raw := strings.TrimSuffix(filename, constants.SourceExtension)
		var b strings.Builder
		for _, c := range raw {
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
				(c >= '0' && c <= '9') || c == '_' || c == '-' {
				b.WriteRune(c)
			}
		}
		if b.Len() > 0 {
			cleaned := b.String()
			if len(cleaned) > 20 {
				cleaned = cleaned[:20]
			}
			base = cleaned
		}
	}
	return fmt.Sprintf("%s_%d", base, id)
}

// cleanup 按配置清理本次调用产生的沙箱文件
func cleanup(safeName string, cres *model.CompileResult) {
	if judgeCfg.KeepWorkspaces {
		zap.L().Debug("保留沙箱文件", zap.String("name", safeName))
		return
	}
	if srcPath, err := ws.Resolve(safeName+constants.SourceExtension, constants.AreaSources); err == nil {
		ws.Remove(srcPath)
	}
	if cres != nil && cres.ExePath != "" {
		ws.Remove(cres.ExePath)
	}
}

// CompileAndRun 编译并运行一段C++源码，按需附带输出比较结论
func CompileAndRun(ctx context.Context, req *v1.RunReq) (*v1.RunResp, error) {
	metrics := GetGlobalMetrics()
	metrics.RecordInvocation()

	limits, err := normalizeLimits(req.TimeLimitMs, req.MemoryLimitMb)
	if err != nil {
		return nil, err
	}

	release, err := acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	id, err := snowflake.NextID()
	if err != nil {
		metrics.RecordFailure()
		return nil, errors.Wrap(errors.ErrCodeInternal, "生成调用ID失败", err)
	}
	safeName := deriveName(req.Filename, id)
	resp := &v1.RunResp{InvocationID: fmt.Sprintf("%d", id)}

	// 编译内部报错时源码可能已落盘，清理须先于 Compile 注册
	var cres *model.CompileResult
	defer func() { cleanup(safeName, cres) }()

	start := time.Now()
	cres, err = cpp.Compile(ctx, req.Code, safeName, false)
	if err != nil {
		recordPipelineError(metrics, err)
		return nil, err
	}

	resp.Compile = cres
	if !cres.Success {
		metrics.RecordCompileFailure()
		return resp, nil
	}

	rres, err := exe.Execute(ctx, cres.ExePath, req.Input, limits)
	if err != nil {
		recordPipelineError(metrics, err)
		return nil, err
	}
	metrics.RecordOutcome(time.Since(start), rres.Cause)

	resp.Run = &v1.RunPayload{
		Stdout:       rres.Stdout,
		Stderr:       rres.Stderr,
		ExitCode:     rres.ExitCode,
		TimeUsedMs:   rres.TimeUsed.Milliseconds(),
		PeakMemoryKb: rres.PeakMemory / 1024,
		Cause:        rres.Cause,
		Truncated:    rres.Truncated,
	}
	if req.ExpectedOutput != nil {
		cmp := result.NewComparator(true, false)
		resp.Comparison = cmp.Compare(rres.Stdout, *req.ExpectedOutput)
	}
	return resp, nil
}

// DebugWithGdb 以调试符号编译源码并在批处理GDB会话中运行
func DebugWithGdb(ctx context.Context, req *v1.DebugReq) (*v1.DebugResp, error) {
	metrics := GetGlobalMetrics()
	metrics.RecordInvocation()

	release, err := acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	id, err := snowflake.NextID()
	if err != nil {
		metrics.RecordFailure()
		return nil, errors.Wrap(errors.ErrCodeInternal, "生成调用ID失败", err)
	}
	safeName := deriveName("", id)
	resp := &v1.DebugResp{InvocationID: fmt.Sprintf("%d", id)}

	var cres *model.CompileResult
	defer func() { cleanup(safeName, cres) }()

	cres, err = cpp.Compile(ctx, req.Code, safeName, true)
	if err != nil {
		recordPipelineError(metrics, err)
		return nil, err
	}

	resp.Compile = cres
	if !cres.Success {
		metrics.RecordCompileFailure()
		return resp, nil
	}

	session, err := dbg.Debug(ctx, cres.ExePath, safeName, req.GdbScript)
	if err != nil {
		recordPipelineError(metrics, err)
		return nil, err
	}
	resp.Session = session
	return resp, nil
}

// CompareOutputs 比较两段输出文本。不触碰沙箱，纯计算
func CompareOutputs(req *v1.CompareReq) *model.ComparisonVerdict {
	ignoreWhitespace := true
	if req.IgnoreWhitespace != nil {
		ignoreWhitespace = *req.IgnoreWhitespace
	}
	ignoreCase := false
	if req.IgnoreCase != nil {
		ignoreCase = *req.IgnoreCase
	}
	return result.NewComparator(ignoreWhitespace, ignoreCase).Compare(req.Actual, req.Expected)
}

// ReadTestCase 按ID读取测试用例
func ReadTestCase(ctx context.Context, id string) (*model.TestCase, error) {
	if caseStore == nil {
		return nil, errors.NewConfigurationError("testcase", "测试用例存储未初始化")
	}
	return caseStore.Lookup(ctx, id)
}

// GetJudgeStats 获取评测队列状态
func GetJudgeStats() map[string]interface{} {
	capacity := 0
	inUse := 0
	if sem != nil {
		capacity = cap(sem)
		inUse = len(sem)
	}
	return map[string]interface{}{
		"max_concurrent":  capacity,
		"active":          inUse,
		"available_slots": capacity - inUse,
	}
}

// recordPipelineError 按错误类别归档指标
func recordPipelineError(m *JudgeMetrics, err error) {
	switch errors.GetErrorCode(err) {
	case errors.ErrCodePathViolation, errors.ErrCodeCommandDenied:
		m.RecordDenied()
	default:
		m.RecordFailure()
	}
}
