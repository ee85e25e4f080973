package async_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stormpath/pkg/async"
)

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("returns value", func(t *testing.T) {
		t.Parallel()

		f := async.Async(context.Background(), 21, func(_ context.Context, n int) (int, error) {
			time.Sleep(10 * time.Millisecond)
			return n * 2, nil
		})

		v, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.True(t, f.IsComplete())
	})

	t.Run("propagates error", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		f := async.Async(context.Background(), 0, func(context.Context, int) (string, error) {
			return "", expected
		})

		_, err := f.Await()
		require.ErrorIs(t, err, expected)
	})

	t.Run("pre-canceled context skips work", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		f := async.Async(ctx, 1, func(context.Context, int) (int, error) {
			called = true
			return 1, nil
		})

		_, err := f.Await()
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("every waiter sees the same outcome", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		f := async.Async(context.Background(), "x", func(_ context.Context, s string) (string, error) {
			<-release
			return s + "y", nil
		})

		var wg sync.WaitGroup
		results := make([]string, 10)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = f.Await()
			}(i)
		}

		close(release)
		wg.Wait()

		for _, r := range results {
			assert.Equal(t, "xy", r)
		}
	})
}

func TestExec(t *testing.T) {
	t.Parallel()

	expected := errors.New("exec failed")
	f := async.Exec(context.Background(), 1, func(context.Context, int) error {
		return expected
	})

	_, err := f.Await()
	require.ErrorIs(t, err, expected)
}

func TestResolvedRejected(t *testing.T) {
	t.Parallel()

	r := async.Resolved("cached")
	assert.True(t, r.IsComplete())
	v, err := r.Await()
	require.NoError(t, err)
	assert.Equal(t, "cached", v)

	expected := errors.New("nope")
	j := async.Rejected[string](expected)
	assert.True(t, j.IsComplete())
	_, err = j.Await()
	require.ErrorIs(t, err, expected)
}

func TestFromChan(t *testing.T) {
	t.Parallel()

	type msg struct {
		v   int
		err error
	}

	t.Run("receives value", func(t *testing.T) {
		t.Parallel()

		ch := make(chan msg, 1)
		f := async.FromChan(ch, func(m msg) (int, error) { return m.v, m.err })
		ch <- msg{v: 7}

		v, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("closed channel", func(t *testing.T) {
		t.Parallel()

		ch := make(chan msg)
		close(ch)
		f := async.FromChan(ch, func(m msg) (int, error) { return m.v, m.err })

		_, err := f.Await()
		require.ErrorIs(t, err, async.ErrClosedChannel)
	})
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	f := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
		time.Sleep(200 * time.Millisecond)
		return 1, nil
	})

	_, err := f.AwaitWithTimeout(10 * time.Millisecond)
	require.ErrorIs(t, err, async.ErrTimeout)

	v, err := f.AwaitWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestAwaitContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	f := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.AwaitContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.IsComplete())
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	double := func(_ context.Context, n int) (int, error) { return n * 2, nil }

	vals, err := async.WaitAll(async.Async(ctx, 1, double), async.Async(ctx, 2, double), async.Async(ctx, 3, double))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, vals)

	expected := errors.New("second failed")
	_, err = async.WaitAll(async.Resolved(1), async.Rejected[int](expected))
	require.ErrorIs(t, err, expected)
}

func TestWaitAny(t *testing.T) {
	t.Parallel()

	_, _, err := async.WaitAny[int]()
	require.ErrorIs(t, err, async.ErrNoFutures)

	slow := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
		time.Sleep(200 * time.Millisecond)
		return 1, nil
	})
	idx, v, err := async.WaitAny(slow, async.Resolved(2))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, v)
}
