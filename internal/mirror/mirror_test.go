package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/shared"
)

type fakeSub struct {
	ch   chan []string
	err  error
	once sync.Once
}

func (s *fakeSub) Snapshots() <-chan []string { return s.ch }
func (s *fakeSub) Err() error                 { return s.err }
func (s *fakeSub) Close()                     { s.once.Do(func() { close(s.ch) }) }

func (s *fakeSub) emit(items []string) { s.ch <- items }

func (s *fakeSub) fail(err error) {
	s.err = err
	s.Close()
}

type fakeSource struct {
	mu            sync.Mutex
	subs          []*fakeSub
	failSubscribe bool
}

func (s *fakeSource) Subscribe(ctx context.Context) (Subscription[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSubscribe {
		return nil, errors.New("no connection")
	}
	sub := &fakeSub{ch: make(chan []string, 4)}
	s.subs = append(s.subs, sub)
	return sub, nil
}

func (s *fakeSource) subsSnapshot() []*fakeSub {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*fakeSub, len(s.subs))
	copy(out, s.subs)
	return out
}

func (s *fakeSource) latestSub() *fakeSub {
	subs := s.subsSnapshot()
	return subs[len(subs)-1]
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPartition(t *testing.T, tenant, name string) *Partition[string] {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPartition[string](client, tenant, name)
}

func startMirror(t *testing.T, conn *connectivity.State, source Source[string], cache Cache[string]) *Mirror[string] {
	m := New("things", conn, source, cache, discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return m
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

func TestMirrorLiveSnapshotsWriteThroughCache(t *testing.T) {
	conn := connectivity.NewState("t1")
	source := &fakeSource{}
	cache := testPartition(t, "t1", "things")
	m := startMirror(t, conn, source, cache)

	conn.SetOnline(true)
	eventually(t, func() bool { return len(source.subsSnapshot()) == 1 }, "subscribe")
	source.latestSub().emit([]string{"a", "b"})

	eventually(t, func() bool { return len(m.Items()) == 2 }, "live snapshot")
	require.Equal(t, []string{"a", "b"}, m.Items())
	require.False(t, m.Loading())
	require.NoError(t, m.Err())

	// The snapshot must land in the cache partition.
	eventually(t, func() bool {
		items, ok, err := cache.Load(context.Background())
		return err == nil && ok && len(items) == 2
	}, "cache write-through")
}

func TestMirrorServesCacheWhileOffline(t *testing.T) {
	conn := connectivity.NewState("t1")
	source := &fakeSource{}
	cache := testPartition(t, "t1", "things")
	require.NoError(t, cache.Store(context.Background(), []string{"cached"}))

	m := startMirror(t, conn, source, cache)

	eventually(t, func() bool { return len(m.Items()) == 1 }, "cached read")
	require.Equal(t, []string{"cached"}, m.Items())
	require.False(t, m.Loading())
}

func TestMirrorFallsBackToCacheOnGoingOffline(t *testing.T) {
	conn := connectivity.NewState("t1")
	source := &fakeSource{}
	cache := testPartition(t, "t1", "things")
	m := startMirror(t, conn, source, cache)

	conn.SetOnline(true)
	eventually(t, func() bool { return len(source.subsSnapshot()) == 1 }, "subscribe")
	source.latestSub().emit([]string{"x", "y", "z"})
	eventually(t, func() bool { return len(m.Items()) == 3 }, "live snapshot")

	conn.SetOnline(false)
	eventually(t, func() bool { return !m.Loading() }, "offline transition")
	require.Equal(t, []string{"x", "y", "z"}, m.Items(), "offline reads serve the last cached snapshot")
}

func TestMirrorSubscriptionErrorIsStickyUntilTransition(t *testing.T) {
	conn := connectivity.NewState("t1")
	source := &fakeSource{}
	cache := testPartition(t, "t1", "things")
	m := startMirror(t, conn, source, cache)

	conn.SetOnline(true)
	eventually(t, func() bool { return len(source.subsSnapshot()) == 1 }, "subscribe")
	source.latestSub().fail(errors.New("stream dropped"))

	eventually(t, func() bool { return m.Err() != nil }, "sticky error")
	require.ErrorIs(t, m.Err(), shared.ErrSubscription)

	// The next transition clears the error and re-subscribes.
	conn.SetOnline(true)
	eventually(t, func() bool { return len(source.subsSnapshot()) == 2 }, "resubscribe")
	eventually(t, func() bool { return m.Err() == nil }, "error cleared")
}

func TestMirrorSubscribeFailure(t *testing.T) {
	conn := connectivity.NewState("t1")
	source := &fakeSource{failSubscribe: true}
	cache := testPartition(t, "t1", "things")
	m := startMirror(t, conn, source, cache)

	conn.SetOnline(true)
	eventually(t, func() bool { return m.Err() != nil }, "subscribe failure surfaces")
	require.ErrorIs(t, m.Err(), shared.ErrSubscription)
	require.False(t, m.Loading())
}

func TestPartitionRoundTrip(t *testing.T) {
	cache := testPartition(t, "t9", "widgets")

	_, ok, err := cache.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "empty partition reports no cached data")

	require.NoError(t, cache.Store(context.Background(), []string{"one", "two"}))
	items, ok, err := cache.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"one", "two"}, items)
}
