package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotFunc reads the full collection from the remote store.
type SnapshotFunc[T any] func(ctx context.Context) ([]T, error)

// PGSource subscribes to a Postgres-backed collection. Repositories fire
// pg_notify on the collection channel inside every mutating transaction, so
// notification order follows commit order; the source re-reads the full
// snapshot on each notification.
type PGSource[T any] struct {
	pool     *pgxpool.Pool
	channel  string
	snapshot SnapshotFunc[T]
}

// NewPGSource constructs a source for one collection channel.
func NewPGSource[T any](pool *pgxpool.Pool, channel string, snapshot SnapshotFunc[T]) *PGSource[T] {
	return &PGSource[T]{pool: pool, channel: channel, snapshot: snapshot}
}

// Subscribe acquires a dedicated listening connection, emits the current
// snapshot, then one snapshot per notification until closed.
func (s *PGSource[T]) Subscribe(ctx context.Context) (Subscription[T], error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("mirror: acquire listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgIdentifier(s.channel)); err != nil {
		conn.Release()
		return nil, fmt.Errorf("mirror: listen %s: %w", s.channel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &pgSubscription[T]{
		ch:     make(chan []T),
		cancel: cancel,
	}

	go func() {
		defer close(sub.ch)
		defer conn.Release()

		emit := func() bool {
			items, err := s.snapshot(subCtx)
			if err != nil {
				sub.setErr(fmt.Errorf("mirror: snapshot %s: %w", s.channel, err))
				return false
			}
			select {
			case sub.ch <- items:
				return true
			case <-subCtx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			if _, err := conn.Conn().WaitForNotification(subCtx); err != nil {
				if !errors.Is(err, context.Canceled) {
					sub.setErr(fmt.Errorf("mirror: wait notification %s: %w", s.channel, err))
				}
				return
			}
			if !emit() {
				return
			}
		}
	}()

	return sub, nil
}

type pgSubscription[T any] struct {
	ch     chan []T
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

func (s *pgSubscription[T]) Snapshots() <-chan []T { return s.ch }

func (s *pgSubscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *pgSubscription[T]) Close() { s.cancel() }

func (s *pgSubscription[T]) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// pgIdentifier quotes a channel name for LISTEN. Channel names are fixed
// constants, the quoting guards against accidents, not injection.
func pgIdentifier(name string) string {
	quoted := ""
	for _, r := range name {
		if r == '"' {
			quoted += `""`
			continue
		}
		quoted += string(r)
	}
	return `"` + quoted + `"`
}
