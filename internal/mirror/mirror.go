// Package mirror implements the remote-collection sync layer: one Mirror
// per entity collection subscribes to the remote store while online,
// persists every snapshot into a local cache partition, and serves the last
// cached snapshot while offline.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Source provides ordered full-collection snapshots from the remote store.
type Source[T any] interface {
	// Subscribe starts a live subscription. Snapshots are delivered in the
	// order the backing store emits them until Close is called or the
	// subscription fails.
	Subscribe(ctx context.Context) (Subscription[T], error)
}

// Subscription is a cancellable stream of collection snapshots. The
// Snapshots channel is closed when the subscription ends; Err reports the
// failure, if any, once the channel is closed.
type Subscription[T any] interface {
	Snapshots() <-chan []T
	Err() error
	Close()
}

// Cache is one named partition of the local persistence store. It is owned
// exclusively by its Mirror; no other component writes to it.
type Cache[T any] interface {
	Load(ctx context.Context) (items []T, ok bool, err error)
	Store(ctx context.Context, items []T) error
}

// View is the read side of a Mirror: the current snapshot and the sync
// flags. Services depend on this, not on the sync machinery.
type View[T any] interface {
	Items() []T
	Loading() bool
	Err() error
}

// Mirror keeps an in-memory copy of one remote collection in sync with the
// connectivity state: live subscription plus cache write-through while
// online, cached-only reads while offline.
type Mirror[T any] struct {
	name   string
	conn   *connectivity.State
	source Source[T]
	cache  Cache[T]
	logger *slog.Logger

	mu      sync.Mutex
	items   []T
	loading bool
	err     error

	subCancel func()
	subDone   chan struct{}
}

// New constructs a Mirror for one collection partition.
func New[T any](name string, conn *connectivity.State, source Source[T], cache Cache[T], logger *slog.Logger) *Mirror[T] {
	return &Mirror[T]{
		name:   name,
		conn:   conn,
		source: source,
		cache:  cache,
		logger: logger.With(slog.String("collection", name)),
	}
}

// Run applies the current connectivity mode, then follows every transition
// until the context is cancelled. Transitions are applied strictly in
// order: the previous subscription is torn down to completion before the
// next mode starts, so a stale snapshot can never overwrite a fresh cache
// read.
func (m *Mirror[T]) Run(ctx context.Context) {
	transitions, cancel := m.conn.Watch()
	defer cancel()

	m.apply(ctx, m.conn.Online())

	for {
		select {
		case <-ctx.Done():
			m.teardown()
			return
		case online := <-transitions:
			m.apply(ctx, online)
		}
	}
}

// Items returns a copy of the current snapshot.
func (m *Mirror[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Loading reports whether the first snapshot or cache read of the current
// mode is still pending.
func (m *Mirror[T]) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Err returns the sticky subscription error, if any. It is cleared on the
// next connectivity transition; the mirror never retries by itself.
func (m *Mirror[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Mirror[T]) apply(ctx context.Context, online bool) {
	m.teardown()
	if online {
		m.startLive(ctx)
	} else {
		m.loadCached(ctx)
	}
}

// teardown cancels the live subscription and waits for its goroutine to
// exit before returning.
func (m *Mirror[T]) teardown() {
	if m.subCancel == nil {
		return
	}
	m.subCancel()
	<-m.subDone
	m.subCancel = nil
	m.subDone = nil
}

func (m *Mirror[T]) startLive(ctx context.Context) {
	m.setState(func() {
		m.loading = true
		m.err = nil
	})

	subCtx, cancel := context.WithCancel(ctx)
	sub, err := m.source.Subscribe(subCtx)
	if err != nil {
		cancel()
		m.logger.Error("subscribe failed", slog.Any("error", err))
		m.setState(func() {
			m.loading = false
			m.err = fmt.Errorf("%w: %v", shared.ErrSubscription, err)
		})
		return
	}

	done := make(chan struct{})
	m.subCancel = func() {
		sub.Close()
		cancel()
	}
	m.subDone = done

	go func() {
		defer close(done)
		for snapshot := range sub.Snapshots() {
			m.setState(func() {
				m.items = snapshot
				m.loading = false
			})
			if err := m.cache.Store(ctx, snapshot); err != nil {
				m.logger.Error("cache write failed", slog.Any("error", err))
			}
		}
		if err := sub.Err(); err != nil {
			m.logger.Error("subscription ended", slog.Any("error", err))
			m.setState(func() {
				m.loading = false
				m.err = fmt.Errorf("%w: %v", shared.ErrSubscription, err)
			})
		}
	}()
}

func (m *Mirror[T]) loadCached(ctx context.Context) {
	m.setState(func() {
		m.loading = true
		m.err = nil
	})

	items, ok, err := m.cache.Load(ctx)
	if err != nil {
		m.logger.Error("cache read failed", slog.Any("error", err))
		items, ok = nil, false
	}
	m.setState(func() {
		if ok {
			m.items = items
		} else {
			m.items = nil
		}
		m.loading = false
	})
}

func (m *Mirror[T]) setState(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}
