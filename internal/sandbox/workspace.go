package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
	"go.uber.org/zap"
)

// validAreas 沙箱内允许的子区域及各自允许的文件扩展名
var validAreas = map[string][]string{
	constants.AreaSources:   {constants.SourceExtension},
	constants.AreaExecute:   {constants.ExeExtension, ""},
	constants.AreaInputs:    {constants.InputExtension},
	constants.AreaOutputs:   {constants.AnswerExtension},
	constants.AreaScripts:   {constants.GdbExtension},
	constants.AreaTestCases: {constants.InputExtension, constants.AnswerExtension},
}

// Workspace 沙箱工作区。所有文件系统操作必须经由本类型解析路径，
// 任何解析结果都严格限制在根目录之内。
type Workspace struct {
	root string // 绝对路径，无符号链接
}

// NewWorkspace 创建沙箱工作区并初始化各子区域目录
func NewWorkspace(root string) (*Workspace, error) {
	if root == "" {
		return nil, errors.NewConfigurationError("judge.sandbox_root", "不能为空")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.NewConfigurationError("judge.sandbox_root", err.Error())
	}
	if err := os.MkdirAll(absRoot, constants.SandboxDirPerm); err != nil {
		return nil, errors.NewConfigurationError("judge.sandbox_root", fmt.Sprintf("创建失败: %v", err))
	}
	// 根目录自身可能经过符号链接（如 macOS 的 /tmp），固定为真实路径
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, errors.NewConfigurationError("judge.sandbox_root", fmt.Sprintf("解析失败: %v", err))
	}

	for area := range validAreas {
		if err := os.MkdirAll(filepath.Join(realRoot, area), constants.SandboxDirPerm); err != nil {
			return nil, errors.NewConfigurationError("judge.sandbox_root", fmt.Sprintf("创建子区域 %s 失败: %v", area, err))
		}
	}

	zap.L().Info("沙箱工作区初始化完成", zap.String("root", realRoot))
	return &Workspace{root: realRoot}, nil
}

// Root 返回沙箱根目录
func (w *Workspace) Root() string {
	return w.root
}

// AreaDir 返回子区域目录的绝对路径
func (w *Workspace) AreaDir(area string) (string, error) {
	if _, ok := validAreas[area]; !ok {
		return "", errors.NewPathViolation(area, "未知的沙箱子区域")
	}
	return filepath.Join(w.root, area), nil
}

// Sanitize 清洗文件名：只允许字母数字、下划线、连字符，外加最多一个
// 作为扩展名分隔的点。不满足约束的名字直接拒绝，而不是静默修正。
func (w *Workspace) Sanitize(rawName string) (string, error) {
	if rawName == "" {
		return "", errors.NewPathViolation(rawName, "文件名为空")
	}
	if len(rawName) > constants.MaxFileNameLen {
		return "", errors.NewPathViolation(rawName, fmt.Sprintf("文件名过长（最多%d字符）", constants.MaxFileNameLen))
	}
	if strings.ContainsRune(rawName, 0) {
		return "", errors.NewPathViolation(rawName, "文件名包含NUL字节")
	}
	if strings.ContainsAny(rawName, "/\\") {
		return "", errors.NewPathViolation(rawName, "文件名包含路径分隔符")
	}
	if strings.Contains(rawName, "..") {
		return "", errors.NewPathViolation(rawName, "文件名包含父目录引用")
	}

	base, ext := rawName, ""
	if idx := strings.IndexByte(rawName, '.'); idx >= 0 {
		base, ext = rawName[:idx], rawName[idx:]
		if strings.Contains(ext[1:], ".") {
			return "", errors.NewPathViolation(rawName, "文件名包含多个点")
		}
	}
	if base == "" {
		return "", errors.NewPathViolation(rawName, "文件名主体为空")
	}
	for _, c := range base {
		if !isAllowedNameChar(c) {
			return "", errors.NewPathViolation(rawName, fmt.Sprintf("文件名包含非法字符 %q", c))
		}
	}
	for _, c := range ext {
		if c != '.' && !isAllowedNameChar(c) {
			return "", errors.NewPathViolation(rawName, fmt.Sprintf("扩展名包含非法字符 %q", c))
		}
	}
	return base + ext, nil
}

// Resolve 将原始文件名解析为子区域内的绝对路径。
// 解析结果不在 root/area 之内、或扩展名与子区域不符时返回 PathViolation。
// 本函数不创建任何文件系统对象。
func (w *Workspace) Resolve(rawName, area string) (string, error) {
	exts, ok := validAreas[area]
	if !ok {
		return "", errors.NewPathViolation(rawName, fmt.Sprintf("未知的沙箱子区域: %s", area))
	}

	name, err := w.Sanitize(rawName)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(name)
	if !extAllowed(ext, exts) {
		return "", errors.NewPathViolation(rawName, fmt.Sprintf("扩展名 %q 不允许出现在子区域 %s", ext, area))
	}

	areaDir := filepath.Join(w.root, area)
	resolved := filepath.Join(areaDir, name)
	// Sanitize 已排除分隔符与 ..，这里仍然复核一次最终路径
	if filepath.Dir(resolved) != areaDir || !w.Contains(resolved) {
		return "", errors.NewPathViolation(rawName, "解析结果越出沙箱")
	}
	// 已存在的同名文件若是符号链接，拒绝使用
	if info, err := os.Lstat(resolved); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", errors.NewPathViolation(rawName, "目标是符号链接")
	}
	return resolved, nil
}

// WriteFile 解析路径并写入内容，返回确认后的绝对路径
func (w *Workspace) WriteFile(rawName, area string, data []byte, perm os.FileMode) (string, error) {
	path, err := w.Resolve(rawName, area)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return "", errors.NewSandboxError(fmt.Sprintf("写入 %s 失败", filepath.Base(path)), err)
	}
	return path, nil
}

// Contains 判断路径（经符号链接求值后）是否位于沙箱根目录之内
func (w *Workspace) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	// 对最深的已存在祖先求值符号链接，未存在的尾部按字面拼接
	real, err := evalExisting(abs)
	if err != nil {
		return false
	}
	return real == w.root || strings.HasPrefix(real, w.root+string(filepath.Separator))
}

// Remove 删除沙箱内的一个文件，文件不存在视为成功
func (w *Workspace) Remove(path string) {
	if !w.Contains(path) {
		zap.L().Warn("拒绝删除沙箱外路径", zap.String("path", path))
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("删除沙箱文件失败", zap.String("path", path), zap.Error(err))
	}
}

// evalExisting 对路径最深的已存在祖先做符号链接求值，再拼回剩余部分
func evalExisting(abs string) (string, error) {
	remainder := ""
	cur := abs
	for {
		real, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(real, remainder), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", err
		}
		remainder = filepath.Join(filepath.Base(cur), remainder)
		cur = parent
	}
}

func isAllowedNameChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-':
		return true
	}
	return false
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
