package account

import (
	"context"
	"sync"
)

// scope owns the asynchronous tasks started by a controller. Tasks share
// one context that is cancelled on Close.
type scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func newScope(parent context.Context) *scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &scope{ctx: ctx, cancel: cancel}
}

// launch runs fn in its own goroutine. It never blocks the caller.
func (s *scope) launch(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// wait blocks until every launched task returned.
func (s *scope) wait() {
	s.wg.Wait()
}

// close cancels the shared context and waits for the tasks. It is safe to
// call more than once.
func (s *scope) close() {
	s.once.Do(s.cancel)
	s.wg.Wait()
}
