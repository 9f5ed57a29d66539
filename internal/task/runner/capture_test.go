package runner

import (
	"strings"
	"testing"
)

func TestCappedCapture_SharedBudget(t *testing.T) {
	fired := 0
	capture := newCappedCapture(10, func() { fired++ })

	out := capture.stdout()
	errW := capture.stderr()

	// stdout 与 stderr 共享同一份预算
	if _, err := out.Write([]byte("123456")); err != nil {
		t.Fatal(err)
	}
	if _, err := errW.Write([]byte("abcdef")); err != nil {
		t.Fatal(err)
	}

	if got := capture.stdoutString(); got != "123456" {
		t.Errorf("stdout = %q", got)
	}
	if got := capture.stderrString(); got != "abcd" {
		t.Errorf("stderr = %q, want 截断到预算内", got)
	}
	if !capture.truncated() {
		t.Error("truncated() = false, want true")
	}
	if fired != 1 {
		t.Errorf("onExceed 触发 %d 次, want 1", fired)
	}
}

func TestCappedCapture_DiscardAfterExceed(t *testing.T) {
	fired := 0
	capture := newCappedCapture(4, func() { fired++ })
	out := capture.stdout()

	// 超限后的写入被丢弃但仍报告成功，保证管道持续排空
	for i := 0; i < 10; i++ {
		n, err := out.Write([]byte("xxxx"))
		if err != nil || n != 4 {
			t.Fatalf("Write() = (%d, %v), want (4, nil)", n, err)
		}
	}
	if got := capture.stdoutString(); got != "xxxx" {
		t.Errorf("stdout = %q, want %q", got, "xxxx")
	}
	if !capture.truncated() {
		t.Error("truncated() = false, want true")
	}
	if fired != 1 {
		t.Errorf("onExceed 触发 %d 次, want 1", fired)
	}
}

func TestCappedCapture_ExactFill(t *testing.T) {
	fired := 0
	capture := newCappedCapture(8, func() { fired++ })
	out := capture.stdout()

	// 恰好写满预算：没有数据丢失，不算超限
	if _, err := out.Write([]byte("12345678")); err != nil {
		t.Fatal(err)
	}
	if capture.truncated() {
		t.Error("truncated() = true, want false（预算恰好用尽）")
	}
	if fired != 0 {
		t.Errorf("onExceed 触发 %d 次, want 0", fired)
	}

	// 用尽之后再有数据到来才构成超限，终止信号必须发出
	if _, err := out.Write([]byte("MORE")); err != nil {
		t.Fatal(err)
	}
	if !capture.truncated() {
		t.Error("truncated() = false, want true")
	}
	if fired != 1 {
		t.Errorf("onExceed 触发 %d 次, want 1", fired)
	}
	if got := capture.stdoutString(); got != "12345678" {
		t.Errorf("stdout = %q, want %q", got, "12345678")
	}
}

func TestCappedCapture_WithinBudget(t *testing.T) {
	capture := newCappedCapture(1024, func() { t.Error("onExceed 不应触发") })
	out := capture.stdout()

	data := strings.Repeat("a", 1024)
	if _, err := out.Write([]byte(data)); err != nil {
		t.Fatal(err)
	}
	if capture.truncated() {
		t.Error("truncated() = true, want false")
	}
	if capture.stdoutString() != data {
		t.Error("stdout 与写入不一致")
	}
}
