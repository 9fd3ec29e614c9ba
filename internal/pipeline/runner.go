package pipeline

import (
	"context"
	"sync"
)

// Runner executes a single stage on a dedicated background goroutine. The
// foreground only starts runs and receives events; cancellation is
// cooperative and idempotent.
type Runner struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

// Start runs fn in the background under a cancellable child context.
func Start(ctx context.Context, fn func(ctx context.Context) error) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	r := &Runner{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(r.done)
		err := fn(ctx)
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
	}()

	return r
}

// Cancel requests cooperative cancellation. Safe to call more than once;
// the stage stops at its next page boundary.
func (r *Runner) Cancel() {
	r.once.Do(r.cancel)
}

// Done is closed when the stage function returns.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the stage finishes and returns its error.
func (r *Runner) Wait() error {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
