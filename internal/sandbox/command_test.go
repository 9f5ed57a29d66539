package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
)

func TestCommandGuard_Check_Exe(t *testing.T) {
	ws := newTestWorkspace(t)
	guard := NewCommandGuard(ws, "g++", "/usr/bin/gdb")

	exeInSandbox := filepath.Join(ws.Root(), constants.AreaExecute, "prog.exe")

	tests := []struct {
		name    string
		exePath string
		wantErr bool
	}{
		{"允许清单内的相对名", "g++", false},
		{"允许清单内的绝对路径", "/usr/bin/gdb", false},
		{"execute子区域内的产物", exeInSandbox, false},
		{"清单外的系统命令", "/bin/sh", true},
		{"清单外的相对名", "rm", true},
		{"沙箱内但不在execute", filepath.Join(ws.Root(), constants.AreaSources, "a.cpp"), true},
		{"空路径", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.Check(tt.exePath, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check(%q) error = %v, wantErr %v", tt.exePath, err, tt.wantErr)
			}
			if err != nil && !errors.IsErrorCode(err, errors.ErrCodeCommandDenied) {
				t.Errorf("Check(%q) error code = %d, want CommandDenied",
					tt.exePath, errors.GetErrorCode(err))
			}
		})
	}
}

func TestCommandGuard_Check_Args(t *testing.T) {
	ws := newTestWorkspace(t)
	guard := NewCommandGuard(ws, "g++")

	inSandbox := filepath.Join(ws.Root(), constants.AreaSources, "a.cpp")

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"常规编译参数", []string{inSandbox, "-std=c++17", "-O2"}, false},
		{"分号注入", []string{"a.cpp; rm -rf /"}, true},
		{"管道注入", []string{"a.cpp | tee"}, true},
		{"命令替换", []string{"$(whoami)"}, true},
		{"反引号", []string{"`id`"}, true},
		{"换行注入", []string{"a\nrm"}, true},
		{"NUL字节", []string{"a\x00b"}, true},
		{"沙箱外绝对路径", []string{"/etc/passwd"}, true},
		{"相对路径穿越", []string{"../../etc/passwd"}, true},
		{"工具链自身路径再次出现", []string{"g++"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.Check("g++", tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check(args=%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestCommandGuard_Check_SymlinkedArg(t *testing.T) {
	ws := newTestWorkspace(t)
	guard := NewCommandGuard(ws, "g++")

	// 沙箱内的符号链接指向沙箱外，路径求值后应被拒绝
	outside := filepath.Join(t.TempDir(), "target")
	if err := os.WriteFile(outside, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(ws.Root(), constants.AreaInputs, "esc.in")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("无法创建符号链接: %v", err)
	}

	if err := guard.Check("g++", []string{link}); err == nil {
		t.Error("Check() 放行了指向沙箱外的符号链接参数")
	}
}
