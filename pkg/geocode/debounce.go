package geocode

import (
	"context"
	"errors"
	"sync"
	"time"
)

const DefaultDebounce = 250 * time.Millisecond

// ErrSuperseded is returned to a call that a newer call replaced. It is expected, not a failure.
var ErrSuperseded = errors.New("superseded by a newer call")

// Debouncer runs only the latest of a burst of calls. Each call waits out the debounce window;
// a newer call cancels the context of any pending or in-flight older one.
type Debouncer[T any] struct {
	wait   time.Duration
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
}

func NewDebouncer[T any](wait time.Duration) *Debouncer[T] {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer[T]{wait: wait}
}

// Do blocks for the debounce window, then runs fn. It returns ErrSuperseded when a newer call
// arrived first, even if fn already finished.
func (d *Debouncer[T]) Do(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	callCtx, cancel := context.WithCancelCause(ctx)
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel(ErrSuperseded)
	}
	d.seq++
	mine := d.seq
	d.cancel = cancel
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		if d.seq == mine {
			d.cancel = nil
		}
		d.mu.Unlock()
		cancel(nil)
	}()

	timer := time.NewTimer(d.wait)
	defer timer.Stop()

	select {
	case <-callCtx.Done():
		return zero, cause(callCtx)
	case <-timer.C:
	}

	v, err := fn(callCtx)
	if errors.Is(context.Cause(callCtx), ErrSuperseded) {
		return zero, ErrSuperseded
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}

func cause(ctx context.Context) error {
	if c := context.Cause(ctx); errors.Is(c, ErrSuperseded) {
		return ErrSuperseded
	}
	return ctx.Err()
}
