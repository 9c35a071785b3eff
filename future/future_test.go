package future

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

func TestFuture_CompleteOnce(t *testing.T) {
	t.Parallel()

	f := New[int]()
	require.False(t, f.Ready())

	require.True(t, f.Complete(42, nil))
	require.False(t, f.Complete(7, errors.New("late")))

	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, f.Ready())
}

func TestFuture_Result_NonBlocking(t *testing.T) {
	t.Parallel()

	f := New[string]()
	_, ok, err := f.Result()
	require.False(t, ok)
	require.NoError(t, err)

	boom := errors.New("boom")
	f.Complete("", boom)
	_, ok, err = f.Result()
	require.True(t, ok)
	require.ErrorIs(t, err, boom)
}

func TestFuture_Await_ContextUnblocksWaiterOnly(t *testing.T) {
	t.Parallel()

	f := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, f.Ready(), "waiter timeout must not complete the future")

	f.Complete(1, nil)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFuture_ManyWaiters(t *testing.T) {
	t.Parallel()

	f := New[int]()
	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			v, err := f.Get()
			if err != nil {
				return err
			}
			if v != 9 {
				return errors.Newf("got %d", v)
			}
			return nil
		})
	}
	time.Sleep(5 * time.Millisecond)
	f.Complete(9, nil)
	require.NoError(t, g.Wait())
}

func TestFuture_OnComplete(t *testing.T) {
	t.Parallel()

	f := New[int]()
	calls := atomic.NewInt32(0)
	f.OnComplete(func(v int, err error) {
		assert.Equal(t, 3, v)
		assert.NoError(t, err)
		calls.Inc()
	})
	assert.Equal(t, int32(0), calls.Load())

	f.Complete(3, nil)
	assert.Equal(t, int32(1), calls.Load())

	// Late observers run immediately.
	f.OnComplete(func(int, error) { calls.Inc() })
	assert.Equal(t, int32(2), calls.Load())
}

// A panicking observer does not stop later observers or strand waiters.
func TestFuture_OnComplete_PanicIsolated(t *testing.T) {
	t.Parallel()

	f := New[int]()
	calls := atomic.NewInt32(0)
	f.OnComplete(func(int, error) { panic("observer bug") })
	f.OnComplete(func(int, error) { calls.Inc() })

	require.NotPanics(t, func() { f.Complete(5, nil) })
	assert.Equal(t, int32(1), calls.Load())
	require.True(t, f.Ready(), "done must be closed")
	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	// Late observers are isolated too.
	require.NotPanics(t, func() { f.OnComplete(func(int, error) { panic("late") }) })
}

func TestResolved(t *testing.T) {
	t.Parallel()

	f := Resolved("x", nil)
	require.True(t, f.Ready())
	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}
