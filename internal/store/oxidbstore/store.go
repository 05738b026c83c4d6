// Package oxidbstore keeps submissions in OxiDB collections named after the
// site's tables.
package oxidbstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keketsolithane/keketso/internal/db"
	"github.com/keketsolithane/keketso/internal/oxidb"
	"github.com/keketsolithane/keketso/internal/store"
)

type Store struct {
	pool    *db.Pool
	timeout time.Duration
}

var (
	_ store.Store   = (*Store)(nil)
	_ store.Counter = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithTimeout bounds every request. Zero leaves requests bounded only by the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func New(pool *db.Pool, opts ...Option) *Store {
	s := &Store{pool: pool}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return ctx, func() {}
}

// EnsureCollections creates the collections the site writes to.
func (s *Store) EnsureCollections(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	c := s.pool.Get()
	for _, name := range []string{store.MessagesTable, store.QuotesTable} {
		if err := c.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, table string, row store.Row) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	_, err := s.pool.Get().Insert(ctx, table, row)
	var oe *oxidb.Error
	if errors.As(err, &oe) {
		return &store.Error{Message: oe.Msg}
	}
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Count returns the number of documents in the collection for table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	n, err := s.pool.Get().Count(ctx, table, nil)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	_, err := s.pool.Get().Ping(ctx)
	return err
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
