package constants

import "time"

// 运行资源限制常量
const (
	// 默认资源限制
	DefaultTimeLimit     = 5000 * time.Millisecond // 默认时间限制
	DefaultMemoryLimit   = 256 * 1024 * 1024       // 默认内存限制（256MB）
	DefaultMaxOutputSize = 1024 * 1024             // 默认输出上限（1MB）

	// RLIMIT_NPROC 按UID而不是按进程树计数，子进程与本服务同UID，
	// 上限必须容纳服务自身及工具链的全部任务，只防fork炸弹级别的失控
	DefaultProcLimit = 512

	// 资源限制范围
	MinTimeLimit   = 100 * time.Millisecond // 最小时间限制
	MaxTimeLimit   = 60 * time.Second       // 最大时间限制
	MinMemoryLimit = 16 * 1024 * 1024       // 最小内存限制（16MB）
	MaxMemoryLimit = 1024 * 1024 * 1024     // 最大内存限制（1GB）
	MaxOutputSize  = 10 * 1024 * 1024       // 输出上限的上限（10MB）

	// 固定超时配置
	MaxCompileTimeout    = 30 * time.Second // 编译超时时间（不占用用户运行配额）
	MaxDebugTimeout      = 30 * time.Second // GDB调试会话超时时间
	WatchdogKillGrace    = 500 * time.Millisecond
	MemSampleInterval    = 20 * time.Millisecond // 内存采样周期
	CompileOutputLimit   = 256 * 1024            // 编译诊断输出上限
	CompileArtifactLimit = 64 * 1024 * 1024      // 编译产物文件大小上限

	// 并发控制
	DefaultMaxConcurrent = 4  // 默认最大并发数
	MinConcurrent        = 1  // 最小并发数
	MaxConcurrent        = 16 // 最大并发数
	QueueWaitTimeout     = 30 * time.Second

	// 错误信息截断
	MaxErrorSize = 4 * 1024 // 最大错误信息大小
)

// 沙箱目录常量
const (
	// 各子区域名称，每个文件只属于一个子区域
	AreaSources   = "sources"
	AreaExecute   = "execute"
	AreaInputs    = "inputs"
	AreaOutputs   = "outputs"
	AreaScripts   = "scripts"
	AreaTestCases = "testcases"

	// 文件名约束
	MaxFileNameLen  = 64
	SandboxDirPerm  = 0700
	CodeFilePerm    = 0600
	ScriptFilePerm  = 0600
	DefaultExeName  = "main"
	SourceExtension = ".cpp"
	ExeExtension    = ".exe"
	InputExtension  = ".in"
	AnswerExtension = ".out"
	GdbExtension    = ".gdb"
)

// 编译器相关常量
const (
	DefaultCompilerPath = "g++"
	DefaultGdbPath      = "gdb"
	DefaultCppStandard  = "c++17"
	DefaultOptimization = "-O2"
	DebugOptimization   = "-O0"
	CompileWarningFlags = "-Wall -Wextra -Werror"
	DebugSymbolFlag     = "-g"
	StandardFlagPrefix  = "-std="
	DefaultGdbScript    = "set pagination off\nbreak main\nrun\nbacktrace\ninfo registers\nx/10i $pc\nquit\n"

	MaxTestCaseIDLength = 64
	MaxSourceCodeSize   = 1024 * 1024 // 源代码上限（1MB）
	MaxGdbScriptSize    = 64 * 1024   // GDB脚本上限（64KB）
	MaxDiffLines        = 5   // 差异摘要最多返回的行数
	MaxDiffLineLen      = 200 // 单行差异最多返回的字节数
)

// 日志相关常量
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	DefaultLogFile    = "log/server.log"
	DefaultLogMaxSize = 200 // MB
	DefaultLogMaxAge  = 30  // days
	DefaultLogBackups = 7
)

// HTTP 相关常量
const (
	DefaultServerPort = 53333
)
