package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
)

// deniedTokens 参数中不允许出现的shell元字符序列。
// 调用方从不经过shell解释器（参数始终以argv向量传递），这里是纵深防御。
var deniedTokens = []string{";", "|", "&", "`", "$(", "\n", "\r"}

// CommandGuard 命令校验器：可执行文件必须在允许清单内或位于沙箱
// execute 子区域，参数不得包含注入用元字符，路径参数不得越出沙箱。
type CommandGuard struct {
	ws      *Workspace
	allowed map[string]struct{} // 允许直接调用的外部工具链（编译器、调试器）
}

// NewCommandGuard 创建命令校验器
func NewCommandGuard(ws *Workspace, allowedExes ...string) *CommandGuard {
	allowed := make(map[string]struct{}, len(allowedExes))
	for _, exe := range allowedExes {
		if exe != "" {
			allowed[filepath.Clean(exe)] = struct{}{}
		}
	}
	return &CommandGuard{ws: ws, allowed: allowed}
}

// Check 校验一次进程调用。返回 nil 表示放行，否则为 CommandDenied。
func (g *CommandGuard) Check(exePath string, args []string) error {
	if exePath == "" {
		return errors.NewCommandDenied("可执行文件路径为空")
	}
	if strings.ContainsRune(exePath, 0) {
		return errors.NewCommandDenied("可执行文件路径包含NUL字节")
	}
	if !g.isAllowedExe(exePath) {
		return errors.NewCommandDenied(fmt.Sprintf("可执行文件不在允许清单内: %s", exePath))
	}

	for _, arg := range args {
		if strings.ContainsRune(arg, 0) {
			return errors.NewCommandDenied("参数包含NUL字节")
		}
		for _, tok := range deniedTokens {
			if strings.Contains(arg, tok) {
				return errors.NewCommandDenied(fmt.Sprintf("参数包含禁止序列 %q", tok))
			}
		}
		// 绝对路径参数必须指向沙箱内（允许工具链自身路径再次出现）
		if filepath.IsAbs(arg) && !g.ws.Contains(arg) {
			if _, ok := g.allowed[filepath.Clean(arg)]; !ok {
				return errors.NewCommandDenied(fmt.Sprintf("路径参数越出沙箱: %s", arg))
			}
		}
		// 相对路径参数不得借助 .. 逃逸
		if !filepath.IsAbs(arg) && containsDotDot(arg) {
			return errors.NewCommandDenied(fmt.Sprintf("参数包含父目录引用: %s", arg))
		}
	}
	return nil
}

// isAllowedExe 允许清单内的工具链，或沙箱 execute 子区域内的产物
func (g *CommandGuard) isAllowedExe(exePath string) bool {
	if _, ok := g.allowed[filepath.Clean(exePath)]; ok {
		return true
	}
	execDir, err := g.ws.AreaDir(constants.AreaExecute)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(exePath) {
		return false
	}
	if !g.ws.Contains(exePath) {
		return false
	}
	return filepath.Dir(filepath.Clean(exePath)) == execDir
}

func containsDotDot(arg string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(arg), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
