package testcase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
)

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"常规标识", "case_01", false},
		{"连字符", "two-sum-1", false},
		{"空标识", "", true},
		{"带点", "case.01", true},
		{"父目录引用", "../secret", true},
		{"正斜杠", "a/b", true},
		{"NUL字节", "a\x00b", true},
		{"空格", "case 1", true},
		{"超长标识", strings.Repeat("a", constants.MaxTestCaseIDLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("SanitizeID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !errors.IsErrorCode(err, errors.ErrCodePathViolation) {
				t.Errorf("SanitizeID(%q) error code = %d, want PathViolation",
					tt.id, errors.GetErrorCode(err))
			}
		})
	}
}

func newTestStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	return store, dir
}

func TestLocalStore_Lookup(t *testing.T) {
	store, dir := newTestStore(t)

	if err := os.WriteFile(filepath.Join(dir, "case_01.in"), []byte("2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "case_01.out"), []byte("5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tc, err := store.Lookup(context.Background(), "case_01")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if tc.ID != "case_01" || tc.Input != "2 3\n" || tc.Expected != "5\n" {
		t.Errorf("Lookup() = %+v", tc)
	}
}

func TestLocalStore_Lookup_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Lookup(context.Background(), "missing")
	if err == nil {
		t.Fatal("Lookup(missing) error = nil, want error")
	}
	if !errors.IsErrorCode(err, errors.ErrCodeNotFound) {
		t.Errorf("error code = %d, want NotFound", errors.GetErrorCode(err))
	}
}

func TestLocalStore_Lookup_MissingAnswer(t *testing.T) {
	store, dir := newTestStore(t)

	// 只有输入没有期望输出，同样视为不存在
	if err := os.WriteFile(filepath.Join(dir, "half.in"), []byte("1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Lookup(context.Background(), "half"); !errors.IsErrorCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Lookup(half) error = %v, want NotFound", err)
	}
}

func TestLocalStore_Lookup_RejectsTraversal(t *testing.T) {
	store, dir := newTestStore(t)

	// 存储目录之外放一个诱饵文件
	outside := filepath.Join(filepath.Dir(dir), "secret.in")
	if err := os.WriteFile(outside, []byte("leak"), 0644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(outside)

	for _, id := range []string{"../secret", "..%2Fsecret", "secret.in"} {
		if _, err := store.Lookup(context.Background(), id); err == nil {
			t.Errorf("Lookup(%q) error = nil, want PathViolation", id)
		}
	}
}

func TestNewLocalStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cases")
	if _, err := NewLocalStore(dir); err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("存储目录未创建: %v", err)
	}
}

func TestNewLocalStore_EmptyDir(t *testing.T) {
	if _, err := NewLocalStore(""); err == nil {
		t.Fatal("NewLocalStore(\"\") error = nil, want error")
	}
}
