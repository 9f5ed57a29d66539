package testcase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/internal/model"
	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
)

// Store 测试用例存储。对流水线只读；标识符在任何文件系统查找之前
// 先经过与路径守卫同等的清洗。
type Store interface {
	Lookup(ctx context.Context, id string) (*model.TestCase, error)
}

// SanitizeID 校验测试用例标识：字母数字、下划线、连字符，不允许点。
// 非法标识一律返回 PathViolation，而不是尝试修正。
func SanitizeID(id string) (string, error) {
	if id == "" {
		return "", errors.NewPathViolation(id, "测试用例标识为空")
	}
	if len(id) > constants.MaxTestCaseIDLength {
		return "", errors.NewPathViolation(id, fmt.Sprintf("标识过长（最多%d字符）", constants.MaxTestCaseIDLength))
	}
	if strings.ContainsRune(id, 0) {
		return "", errors.NewPathViolation(id, "标识包含NUL字节")
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return "", errors.NewPathViolation(id, fmt.Sprintf("标识包含非法字符 %q", c))
		}
	}
	return id, nil
}

// LocalStore 本地目录存储：<dir>/<id>.in 与 <dir>/<id>.out
type LocalStore struct {
	dir string
}

// NewLocalStore 创建本地测试用例存储
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.NewConfigurationError("testcase.dir", "不能为空")
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewConfigurationError("testcase.dir", err.Error())
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, errors.NewConfigurationError("testcase.dir", fmt.Sprintf("目录不可用: %s", absDir))
	}
	return &LocalStore{dir: absDir}, nil
}

// Lookup 按标识读取输入与期望输出
func (s *LocalStore) Lookup(_ context.Context, id string) (*model.TestCase, error) {
	safeID, err := SanitizeID(id)
	if err != nil {
		return nil, err
	}

	input, err := s.readPart(safeID, constants.InputExtension)
	if err != nil {
		return nil, err
	}
	expected, err := s.readPart(safeID, constants.AnswerExtension)
	if err != nil {
		return nil, err
	}
	return &model.TestCase{ID: safeID, Input: input, Expected: expected}, nil
}

func (s *LocalStore) readPart(safeID, ext string) (string, error) {
	path := filepath.Join(s.dir, safeID+ext)
	// SanitizeID 已排除分隔符与点，这里复核最终路径仍在存储目录内
	if filepath.Dir(path) != s.dir {
		return "", errors.NewPathViolation(safeID, "解析结果越出测试用例目录")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError(fmt.Sprintf("测试用例 %s", safeID))
		}
		return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("读取测试用例 %s 失败", safeID), err)
	}
	return string(data), nil
}
