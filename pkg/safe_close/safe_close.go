// Package safe_close 提供多组件协同的优雅关闭控制
package safe_close

import (
	"sync"
)

// SafeClose coordinates the shutdown of multiple long-running components
// SafeClose 协调多个常驻组件的关闭
// Each component registers itself via Attach; SendCloseSignal broadcasts the
// close signal once, and WaitClosed blocks until every component reports done.
// 每个组件通过 Attach 注册；SendCloseSignal 只广播一次关闭信号，
// WaitClosed 阻塞直到所有组件完成。
type SafeClose struct {
	mu          sync.Mutex
	closeSignal chan struct{}
	closed      bool
	err         error
	wg          sync.WaitGroup
}

// NewSafeClose 创建 SafeClose 实例
func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach registers a component goroutine
// Attach 注册一个组件协程
// The component must call done() exactly once when it has fully stopped and
// should begin shutting down when closeSignal is readable.
// 组件停止后必须恰好调用一次 done()，并在 closeSignal 可读时开始关闭。
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() {
		once.Do(s.wg.Done)
	}
	go f(done, s.closeSignal)
}

// SendCloseSignal broadcasts the close signal, recording the first error
// SendCloseSignal 广播关闭信号，记录首个错误
// Safe to call multiple times; only the first call takes effect.
// 可以多次调用；只有首次调用生效。
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.closeSignal)
}

// WaitClosed blocks until all attached components are done
// WaitClosed 阻塞直到所有已注册组件完成，返回触发关闭的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CloseSignal 返回关闭信号通道（只读）
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}
