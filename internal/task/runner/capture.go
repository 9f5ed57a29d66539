package runner

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// cappedCapture 在捕获 stdout/stderr 的同时实施共享的总字节预算。
// 预算用尽后继续丢弃后续数据（不阻塞子进程的管道），并通过回调
// 通知上层终止进程。
type cappedCapture struct {
	mu        sync.Mutex
	remaining int64
	exceeded  bool
	onExceed  func()
	out       bytes.Buffer
	err       bytes.Buffer
}

func newCappedCapture(budget int64, onExceed func()) *cappedCapture {
	return &cappedCapture{remaining: budget, onExceed: onExceed}
}

func (c *cappedCapture) stdout() io.Writer { return &cappedStream{c: c, buf: &c.out} }
func (c *cappedCapture) stderr() io.Writer { return &cappedStream{c: c, buf: &c.err} }

func (c *cappedCapture) stdoutString() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

func (c *cappedCapture) stderrString() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err.String()
}

func (c *cappedCapture) truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exceeded
}

type cappedStream struct {
	c   *cappedCapture
	buf *bytes.Buffer
}

// Write 始终报告写入成功，保证管道持续排空；超出预算的字节被丢弃
func (s *cappedStream) Write(p []byte) (int, error) {
	c := s.c
	c.mu.Lock()
	var fire bool
	switch {
	case c.remaining <= 0:
		// 预算已用尽。恰好写满预算不算超限，超限以再有数据到来为准，
		// 此时补发终止信号并丢弃
		if len(p) > 0 && !c.exceeded {
			c.exceeded = true
			fire = true
		}
	case int64(len(p)) <= c.remaining:
		s.buf.Write(p)
		c.remaining -= int64(len(p))
	default:
		s.buf.Write(p[:c.remaining])
		c.remaining = 0
		c.exceeded = true
		fire = true
	}
	c.mu.Unlock()
	if fire && c.onExceed != nil {
		c.onExceed()
	}
	return len(p), nil
}

// newClosedReader 将完整输入作为标准输入流提供，读尽即EOF。
// 非交互批处理模型：输入写完之后不再有任何交互。
func newClosedReader(input string) io.Reader {
	return strings.NewReader(input)
}
