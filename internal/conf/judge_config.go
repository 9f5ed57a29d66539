package conf

import (
	"time"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/spf13/viper"
)

// JudgeConfig 评测流水线配置
type JudgeConfig struct {
	SandboxRoot    string        // 沙箱根目录
	MaxConcurrent  int           // 最大并发评测数
	ProcLimit      int           // RLIMIT_NPROC（按UID计数，须容纳服务自身任务）
	KeepWorkspaces bool          // 评测后保留沙箱文件（排查用）
	DefaultTime    time.Duration // 默认时间限制
	MaxTime        time.Duration // 时间限制上限（防止靠超大请求绕过限制）
	DefaultMemory  int64         // 默认内存限制（字节）
	MaxMemory      int64         // 内存限制上限（字节）
	MaxOutputSize  int64         // 输出上限（字节）
}

// CompileConfig 编译与调试工具链配置
type CompileConfig struct {
	CompilerPath string // g++ 路径
	CppStandard  string // C++标准
	Optimization string // 优化选项
	GdbPath      string // gdb 路径
}

// TestCaseConfig 测试用例存储配置
type TestCaseConfig struct {
	Backend string // local / minio
	Dir     string // local 后端目录

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
}

// LoadJudgeConfig 从配置文件加载评测配置
func LoadJudgeConfig(cfg *viper.Viper) *JudgeConfig {
	return &JudgeConfig{
		SandboxRoot:    cfg.GetString("judge.sandbox_root"),
		MaxConcurrent:  cfg.GetInt("judge.max_concurrent"),
		ProcLimit:      cfg.GetInt("judge.proc_limit"),
		KeepWorkspaces: cfg.GetBool("judge.keep_workspaces"),
		DefaultTime:    time.Duration(cfg.GetInt("judge.default_time_ms")) * time.Millisecond,
		MaxTime:        time.Duration(cfg.GetInt("judge.max_time_ms")) * time.Millisecond,
		DefaultMemory:  cfg.GetInt64("judge.default_memory_mb") * 1024 * 1024,
		MaxMemory:      cfg.GetInt64("judge.max_memory_mb") * 1024 * 1024,
		MaxOutputSize:  cfg.GetInt64("judge.max_output_size"),
	}
}

// LoadCompileConfig 从配置文件加载工具链配置
func LoadCompileConfig(cfg *viper.Viper) *CompileConfig {
	return &CompileConfig{
		CompilerPath: cfg.GetString("compile.compiler_path"),
		CppStandard:  cfg.GetString("compile.cpp_standard"),
		Optimization: cfg.GetString("compile.optimization"),
		GdbPath:      cfg.GetString("compile.gdb_path"),
	}
}

// LoadTestCaseConfig 从配置文件加载测试用例存储配置
func LoadTestCaseConfig(cfg *viper.Viper) *TestCaseConfig {
	return &TestCaseConfig{
		Backend:        cfg.GetString("testcase.backend"),
		Dir:            cfg.GetString("testcase.dir"),
		MinioEndpoint:  cfg.GetString("testcase.minio.endpoint"),
		MinioAccessKey: cfg.GetString("testcase.minio.access_key"),
		MinioSecretKey: cfg.GetString("testcase.minio.secret_key"),
		MinioUseSSL:    cfg.GetBool("testcase.minio.use_ssl"),
		MinioBucket:    cfg.GetString("testcase.minio.bucket"),
	}
}

// GetDefaultJudgeConfig 获取默认评测配置
func GetDefaultJudgeConfig() *JudgeConfig {
	return &JudgeConfig{
		SandboxRoot:   "",
		MaxConcurrent: constants.DefaultMaxConcurrent,
		ProcLimit:     constants.DefaultProcLimit,
		DefaultTime:   constants.DefaultTimeLimit,
		MaxTime:       constants.MaxTimeLimit,
		DefaultMemory: constants.DefaultMemoryLimit,
		MaxMemory:     constants.MaxMemoryLimit,
		MaxOutputSize: constants.DefaultMaxOutputSize,
	}
}
