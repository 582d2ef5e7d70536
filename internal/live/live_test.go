package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, ch <-chan int, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("value %d was not delivered", want)
		}
	}
}

func TestSubscribe_InitialQueryAndRequeryOnChange(t *testing.T) {
	feed := NewFeed()
	var value atomic.Int64
	value.Store(1)

	got := make(chan int, 16)
	sub := Subscribe(context.Background(), feed, "users",
		func(ctx context.Context) (int, error) { return int(value.Load()), nil },
		func(n int, err error) {
			require.NoError(t, err)
			got <- n
		})
	defer sub.Close()

	waitFor(t, got, 1)

	value.Store(2)
	feed.Publish("users")
	waitFor(t, got, 2)
}

func TestSubscribe_IgnoresOtherCollections(t *testing.T) {
	feed := NewFeed()
	var calls atomic.Int32

	sub := Subscribe(context.Background(), feed, "withdrawals",
		func(ctx context.Context) (int, error) { return int(calls.Add(1)), nil },
		func(int, error) {})
	defer sub.Close()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	feed.Publish("users")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubscribe_BurstCoalesces(t *testing.T) {
	feed := NewFeed()
	release := make(chan struct{})
	var calls atomic.Int32

	sub := Subscribe(context.Background(), feed, "users",
		func(ctx context.Context) (int, error) {
			n := calls.Add(1)
			if n == 1 {
				<-release
			}
			return int(n), nil
		},
		func(int, error) {})
	defer sub.Close()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	for i := 0; i < 10; i++ {
		feed.Publish("users")
	}
	close(release)

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSubscribe_ReadErrorKeepsSubscription(t *testing.T) {
	feed := NewFeed()
	var fail atomic.Bool
	fail.Store(true)

	errs := make(chan error, 4)
	got := make(chan int, 4)
	sub := Subscribe(context.Background(), feed, "users",
		func(ctx context.Context) (int, error) {
			if fail.Load() {
				return 0, errors.New("store down")
			}
			return 7, nil
		},
		func(n int, err error) {
			if err != nil {
				errs <- err
				return
			}
			got <- n
		})
	defer sub.Close()

	select {
	case err := <-errs:
		assert.EqualError(t, err, "store down")
	case <-time.After(time.Second):
		t.Fatal("error was not delivered")
	}

	fail.Store(false)
	feed.Publish("users")
	waitFor(t, got, 7)
}

func TestSubscription_CloseStopsDelivery(t *testing.T) {
	feed := NewFeed()
	var delivered atomic.Int32

	sub := Subscribe(context.Background(), feed, "users",
		func(ctx context.Context) (int, error) { return 1, nil },
		func(int, error) { delivered.Add(1) })

	require.Eventually(t, func() bool { return delivered.Load() == 1 }, time.Second, 5*time.Millisecond)
	sub.Close()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription goroutine did not exit")
	}
	assert.Equal(t, 0, feed.Watchers("users"))

	feed.Publish("users")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), delivered.Load())
}

func TestOnce_RunsQueryOnce(t *testing.T) {
	got := make(chan int, 2)
	sub := Once(context.Background(),
		func(ctx context.Context) (int, error) { return 42, nil },
		func(n int, err error) { got <- n })

	waitFor(t, got, 42)
	<-sub.Done()
	assert.Len(t, got, 0)
}

func TestOnce_CancelledBeforeResultDoesNotDeliver(t *testing.T) {
	started := make(chan struct{})
	var delivered atomic.Bool

	sub := Once(context.Background(),
		func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		},
		func(int, error) { delivered.Store(true) })

	<-started
	sub.Close()
	<-sub.Done()
	assert.False(t, delivered.Load())
}

type fakeHandle struct {
	mu     sync.Mutex
	closed int
}

func (h *fakeHandle) Close() {
	h.mu.Lock()
	h.closed++
	h.mu.Unlock()
}

func (h *fakeHandle) closedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func TestRegistry_AcquireReleasesPrevious(t *testing.T) {
	reg := NewRegistry()
	first, second := &fakeHandle{}, &fakeHandle{}

	reg.Acquire("leaderboard", first)
	reg.Acquire("leaderboard", second)

	assert.Equal(t, 1, first.closedCount())
	assert.Equal(t, 0, second.closedCount())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_ReleaseAll(t *testing.T) {
	reg := NewRegistry()
	a, b := &fakeHandle{}, &fakeHandle{}
	reg.Acquire("a", a)
	reg.Acquire("b", b)

	reg.ReleaseAll()

	assert.Equal(t, 1, a.closedCount())
	assert.Equal(t, 1, b.closedCount())
	assert.Equal(t, 0, reg.Len())

	late := &fakeHandle{}
	reg.Acquire("c", late)
	assert.Equal(t, 1, late.closedCount())
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_ReloadDoesNotStackWatchers(t *testing.T) {
	feed := NewFeed()
	reg := NewRegistry()

	for i := 0; i < 5; i++ {
		sub := Subscribe(context.Background(), feed, "users",
			func(ctx context.Context) (int, error) { return 0, nil },
			func(int, error) {})
		reg.Acquire("totalUsers", sub)
	}

	require.Eventually(t, func() bool { return feed.Watchers("users") == 1 }, time.Second, 5*time.Millisecond)
	reg.ReleaseAll()
	require.Eventually(t, func() bool { return feed.Watchers("users") == 0 }, time.Second, 5*time.Millisecond)
}
