package geocode

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestDebouncer_OnlyLatestRuns(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDebouncer[string](30 * time.Millisecond)
	var calls atomic.Int32

	results := make([]string, 3)
	errs := make([]error, 3)
	var wg sync.WaitGroup
	for i, q := range []string{"v", "via", "via roma"} {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			results[i], errs[i] = d.Do(context.Background(), func(ctx context.Context) (string, error) {
				calls.Add(1)
				return q, nil
			})
		}(i, q)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	assert.ErrorIs(t, errs[0], ErrSuperseded)
	assert.ErrorIs(t, errs[1], ErrSuperseded)
	require.NoError(t, errs[2])
	assert.Equal(t, "via roma", results[2])
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_CancelsInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDebouncer[int](time.Millisecond)
	started := make(chan struct{})

	var firstErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, firstErr = d.Do(context.Background(), func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		})
	}()

	<-started
	v, err := d.Do(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	<-done

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.ErrorIs(t, firstErr, ErrSuperseded)
}

func TestDebouncer_ParentCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDebouncer[int](time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Do(ctx, func(ctx context.Context) (int, error) { return 1, nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrSuperseded))
}

func TestDebouncer_PropagatesErrors(t *testing.T) {
	d := NewDebouncer[int](time.Millisecond)
	boom := errors.New("boom")

	_, err := d.Do(context.Background(), func(ctx context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}
