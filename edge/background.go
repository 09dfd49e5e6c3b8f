package edge

import (
	"context"
	"fmt"
	"sync"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-sheetlog/core"
)

// BackgroundTasks runs work registered after a response has been written and
// keeps track of it until it settles, so shutdown can drain it.
type BackgroundTasks struct {
	base   context.Context
	logger core.Logger
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func NewBackgroundTasks(base context.Context, logger core.Logger) *BackgroundTasks {
	if base == nil {
		base = context.Background()
	}
	return &BackgroundTasks{
		base:   context.WithoutCancel(base),
		logger: glog.Ensure(logger),
	}
}

// WaitUntil starts task on its own goroutine and returns immediately. Tasks
// registered after Close are dropped with a warning.
func (b *BackgroundTasks) WaitUntil(task core.Task) {
	if b == nil || task == nil {
		return
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		core.LogWithLevel(b.base, b.logger, "warn", "background task rejected after shutdown", nil)
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()
	go func() {
		defer b.wg.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				core.LogWithLevel(b.base, b.logger, "error", "background task panicked", map[string]any{
					"panic": fmt.Sprint(recovered),
				})
			}
		}()
		task(b.base)
	}()
}

// Close stops accepting new tasks. Already registered tasks keep running and
// can be drained with Wait.
func (b *BackgroundTasks) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

// Wait blocks until every registered task has settled or ctx is done.
func (b *BackgroundTasks) Wait(ctx context.Context) error {
	if b == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ core.LifetimeExtender = (*BackgroundTasks)(nil)
