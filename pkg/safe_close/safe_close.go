// Package safe_close coordinates graceful shutdown of a group of long-running workers.
// safe_close 协调一组长期运行的协程的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to every attached worker and waits for all of them.
// SafeClose 向所有挂载的协程广播关闭信号，并等待它们全部退出
type SafeClose struct {
	once    sync.Once
	mu      sync.Mutex
	wg      sync.WaitGroup
	closeCh chan struct{}
	err     error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeCh: make(chan struct{})}
}

// Attach starts fn in a goroutine. fn must call done when it returns.
// Attach 在协程中运行 fn，fn 退出时必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	go fn(s.wg.Done, s.closeCh)
}

// SendCloseSignal closes the signal channel once. The first non-nil err is kept.
// SendCloseSignal 只关闭一次信号通道，保留第一个非空错误
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if s.err == nil && err != nil {
		s.err = err
	}
	s.mu.Unlock()

	s.once.Do(func() {
		close(s.closeCh)
	})
}

// CloseSignal exposes the close channel for select loops.
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeCh
}

// WaitClosed blocks until every attached worker called done.
// WaitClosed 阻塞直到所有协程调用 done
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
