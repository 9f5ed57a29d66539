package conf

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/spf13/viper"
)

// ValidateConfig 验证配置文件。任何无效项都是启动期致命错误，
// 绝不推迟到请求处理时才暴露。
func ValidateConfig(cfg *viper.Viper) error {
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("服务器配置错误: %w", err)
	}
	if err := validateJudgeConfig(cfg); err != nil {
		return fmt.Errorf("评测机配置错误: %w", err)
	}
	if err := validateCompileConfig(cfg); err != nil {
		return fmt.Errorf("编译配置错误: %w", err)
	}
	if err := validateTestCaseConfig(cfg); err != nil {
		return fmt.Errorf("测试用例存储配置错误: %w", err)
	}
	return nil
}

// validateServerConfig 验证服务器配置
func validateServerConfig(cfg *viper.Viper) error {
	port := cfg.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("端口号无效: %d (应在1-65535之间)", port)
	}

	mode := cfg.GetString("server.mode")
	if mode != "dev" && mode != "prod" && mode != "test" {
		return fmt.Errorf("运行模式无效: %s (应为dev/prod/test)", mode)
	}
	return nil
}

// validateJudgeConfig 验证评测机配置
func validateJudgeConfig(cfg *viper.Viper) error {
	if cfg.GetString("judge.sandbox_root") == "" {
		return fmt.Errorf("judge.sandbox_root 不能为空")
	}

	maxConcurrent := cfg.GetInt("judge.max_concurrent")
	if maxConcurrent < constants.MinConcurrent || maxConcurrent > constants.MaxConcurrent {
		return fmt.Errorf("最大并发数无效: %d (应在%d-%d之间)",
			maxConcurrent, constants.MinConcurrent, constants.MaxConcurrent)
	}

	defaultTime := time.Duration(cfg.GetInt("judge.default_time_ms")) * time.Millisecond
	maxTime := time.Duration(cfg.GetInt("judge.max_time_ms")) * time.Millisecond
	if defaultTime < constants.MinTimeLimit || defaultTime > constants.MaxTimeLimit {
		return fmt.Errorf("默认时间限制无效: %v (应在%v-%v之间)",
			defaultTime, constants.MinTimeLimit, constants.MaxTimeLimit)
	}
	if maxTime < defaultTime || maxTime > constants.MaxTimeLimit {
		return fmt.Errorf("最大时间限制无效: %v (应在%v-%v之间)",
			maxTime, defaultTime, constants.MaxTimeLimit)
	}

	defaultMem := cfg.GetInt64("judge.default_memory_mb") * 1024 * 1024
	maxMem := cfg.GetInt64("judge.max_memory_mb") * 1024 * 1024
	if defaultMem < constants.MinMemoryLimit || defaultMem > constants.MaxMemoryLimit {
		return fmt.Errorf("默认内存限制无效: %dMB (应在%d-%dMB之间)",
			defaultMem/(1024*1024), constants.MinMemoryLimit/(1024*1024), constants.MaxMemoryLimit/(1024*1024))
	}
	if maxMem < defaultMem || maxMem > constants.MaxMemoryLimit {
		return fmt.Errorf("最大内存限制无效: %dMB", maxMem/(1024*1024))
	}

	maxOutputSize := cfg.GetInt64("judge.max_output_size")
	if maxOutputSize <= 0 || maxOutputSize > constants.MaxOutputSize {
		return fmt.Errorf("最大输出大小无效: %d (应在1B-%dB之间)", maxOutputSize, constants.MaxOutputSize)
	}
	return nil
}

// validateCompileConfig 验证工具链配置。
// 编译器必须在启动时就能找到，找不到属于配置错误而非请求错误。
func validateCompileConfig(cfg *viper.Viper) error {
	compilerPath := cfg.GetString("compile.compiler_path")
	if compilerPath == "" {
		return fmt.Errorf("compile.compiler_path 不能为空")
	}
	if _, err := exec.LookPath(compilerPath); err != nil {
		return fmt.Errorf("编译器不可用: %s (%v)", compilerPath, err)
	}

	gdbPath := cfg.GetString("compile.gdb_path")
	if gdbPath != "" {
		if _, err := exec.LookPath(gdbPath); err != nil {
			return fmt.Errorf("调试器不可用: %s (%v)", gdbPath, err)
		}
	}

	std := cfg.GetString("compile.cpp_standard")
	switch std {
	case "c++11", "c++14", "c++17", "c++20", "c++23":
	default:
		return fmt.Errorf("C++标准无效: %s", std)
	}
	return nil
}

// validateTestCaseConfig 验证测试用例存储配置
func validateTestCaseConfig(cfg *viper.Viper) error {
	switch cfg.GetString("testcase.backend") {
	case "local":
		if cfg.GetString("testcase.dir") == "" {
			return fmt.Errorf("testcase.dir 不能为空")
		}
	case "minio":
		if cfg.GetString("testcase.minio.endpoint") == "" || cfg.GetString("testcase.minio.bucket") == "" {
			return fmt.Errorf("testcase.minio.endpoint 与 testcase.minio.bucket 不能为空")
		}
	default:
		return fmt.Errorf("测试用例存储后端无效: %s (应为local/minio)", cfg.GetString("testcase.backend"))
	}
	return nil
}

// SetDefaultValues 设置默认配置值
func SetDefaultValues(cfg *viper.Viper) {
	// 服务器默认值
	cfg.SetDefault("server.port", constants.DefaultServerPort)
	cfg.SetDefault("server.mode", "dev")
	cfg.SetDefault("server.name", "oi-assistant")

	// 评测机默认值
	cfg.SetDefault("judge.max_concurrent", constants.DefaultMaxConcurrent)
	cfg.SetDefault("judge.proc_limit", constants.DefaultProcLimit)
	cfg.SetDefault("judge.keep_workspaces", false)
	cfg.SetDefault("judge.default_time_ms", int(constants.DefaultTimeLimit.Milliseconds()))
	cfg.SetDefault("judge.max_time_ms", int(constants.MaxTimeLimit.Milliseconds()))
	cfg.SetDefault("judge.default_memory_mb", int(constants.DefaultMemoryLimit/(1024*1024)))
	cfg.SetDefault("judge.max_memory_mb", int(constants.MaxMemoryLimit/(1024*1024)))
	cfg.SetDefault("judge.max_output_size", constants.DefaultMaxOutputSize)

	// 工具链默认值
	cfg.SetDefault("compile.compiler_path", constants.DefaultCompilerPath)
	cfg.SetDefault("compile.cpp_standard", constants.DefaultCppStandard)
	cfg.SetDefault("compile.optimization", constants.DefaultOptimization)
	cfg.SetDefault("compile.gdb_path", constants.DefaultGdbPath)

	// 测试用例存储默认值
	cfg.SetDefault("testcase.backend", "local")
	cfg.SetDefault("testcase.dir", "./testcases")

	// 认证默认值
	cfg.SetDefault("auth.enable", false)

	// 日志默认值
	cfg.SetDefault("log.level", constants.LogLevelInfo)
	cfg.SetDefault("log.filename", constants.DefaultLogFile)
	cfg.SetDefault("log.max_size", constants.DefaultLogMaxSize)
	cfg.SetDefault("log.max_age", constants.DefaultLogMaxAge)
	cfg.SetDefault("log.max_backups", constants.DefaultLogBackups)

	// Snowflake默认值
	cfg.SetDefault("snowflake.machine_id", 1)
	cfg.SetDefault("snowflake.start_time", "2025-07-01")
}
