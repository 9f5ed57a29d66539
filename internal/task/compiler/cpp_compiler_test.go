package compiler

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/internal/sandbox"
	"github.com/hiturf/mcp-oi-assistant/internal/task/runner"
)

const helloSource = `#include <iostream>
int main() {
    std::cout << "Hello, World!" << std::endl;
    return 0;
}`

const brokenSource = `#include <iostream>
int main() {
    std::cout << undeclared_variable;
}`

func newTestCompiler(t *testing.T) *CppCompiler {
	t.Helper()
	gxx, err := exec.LookPath("g++")
	if err != nil {
		t.Skip("g++ not found, skipping test")
	}
	ws, err := sandbox.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkspace() error = %v", err)
	}
	guard := sandbox.NewCommandGuard(ws, gxx)
	limiter := runner.NewLimiter(constants.DefaultProcLimit)
	return NewCppCompiler(ws, guard, limiter, gxx, "", "")
}

func TestCppCompiler_Compile_Success(t *testing.T) {
	c := newTestCompiler(t)

	result, err := c.Compile(context.Background(), helloSource, "hello_1", false)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false, diagnostics: %s", result.Diagnostics)
	}
	if result.ExePath == "" {
		t.Fatal("ExePath 为空")
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
}

func TestCppCompiler_Compile_SyntaxError(t *testing.T) {
	c := newTestCompiler(t)

	result, err := c.Compile(context.Background(), brokenSource, "broken_1", false)
	if err != nil {
		t.Fatalf("Compile() error = %v（编译失败不是流水线故障）", err)
	}
	if result.Success {
		t.Fatal("Success = true, want false")
	}
	if result.ExitCode == 0 {
		t.Error("ExitCode = 0, want 非零")
	}
	if !strings.Contains(result.Diagnostics, "undeclared_variable") {
		t.Errorf("诊断信息未包含出错符号: %s", result.Diagnostics)
	}
}

func TestCppCompiler_Compile_WerrorOnWarning(t *testing.T) {
	c := newTestCompiler(t)

	// 未使用变量在 -Wall -Werror 下应导致编译失败
	src := `int main() { int unused = 42; return 0; }`
	result, err := c.Compile(context.Background(), src, "warn_1", false)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if result.Success {
		t.Error("Success = true, want false（警告升级为错误）")
	}
}

func TestCppCompiler_Compile_EmptySource(t *testing.T) {
	c := newTestCompiler(t)

	if _, err := c.Compile(context.Background(), "", "empty_1", false); err == nil {
		t.Error("Compile(\"\") error = nil, want error")
	}
}

func TestCppCompiler_Compile_OversizedSource(t *testing.T) {
	c := newTestCompiler(t)

	big := strings.Repeat("/", constants.MaxSourceCodeSize+1)
	if _, err := c.Compile(context.Background(), big, "big_1", false); err == nil {
		t.Error("Compile(超大源码) error = nil, want error")
	}
}

func TestCppCompiler_Compile_UnsafeName(t *testing.T) {
	c := newTestCompiler(t)

	if _, err := c.Compile(context.Background(), helloSource, "../escape", false); err == nil {
		t.Error("Compile(越界文件名) error = nil, want error")
	}
}

func TestCppCompiler_BuildArgs(t *testing.T) {
	gxx, err := exec.LookPath("g++")
	if err != nil {
		t.Skip("g++ not found, skipping test")
	}
	ws, err := sandbox.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewCppCompiler(ws, sandbox.NewCommandGuard(ws, gxx), runner.NewLimiter(0), gxx, "c++20", "-O1")

	args := c.buildArgs("/s/a.cpp", "/e/a", false)
	joined := strings.Join(args, " ")
	for _, want := range []string{"-std=c++20", "-O1", "-o /e/a", "-Wall", "-Wextra", "-Werror"} {
		if !strings.Contains(joined, want) {
			t.Errorf("buildArgs() = %q, 缺少 %q", joined, want)
		}
	}

	debugArgs := strings.Join(c.buildArgs("/s/a.cpp", "/e/a", true), " ")
	if !strings.Contains(debugArgs, "-O0") || !strings.Contains(debugArgs, "-g") {
		t.Errorf("buildArgs(debug) = %q, 缺少调试选项", debugArgs)
	}
	if strings.Contains(debugArgs, "-O1") {
		t.Errorf("buildArgs(debug) = %q, 不应携带常规优化选项", debugArgs)
	}
}
