package oxidbstore

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/keketsolithane/keketso/internal/db"
	"github.com/keketsolithane/keketso/internal/oxidb/oxidbtest"
	"github.com/keketsolithane/keketso/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...Option) (*Store, *oxidbtest.Server) {
	t.Helper()
	srv := oxidbtest.NewServer(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	pool, err := db.NewPool(context.Background(), srv.Host, srv.Port, 2, 0, log)
	require.NoError(t, err)
	s := New(pool, opts...)
	t.Cleanup(func() { s.Close() })
	return s, srv
}

func TestStore_InsertAndPing(t *testing.T) {
	s, srv := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureCollections(ctx))
	require.NoError(t, s.EnsureCollections(ctx))
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Insert(ctx, store.QuotesTable, store.Row{
		"first_name": "Palesa",
		"services":   []string{"Cybersecurity"},
	}))

	docs := srv.Docs(store.QuotesTable)
	require.Len(t, docs, 1)
	assert.Equal(t, "Palesa", docs[0]["first_name"])
	assert.Equal(t, []any{"Cybersecurity"}, docs[0]["services"])

	n, err := s.Count(ctx, store.QuotesTable)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.Count(ctx, store.MessagesTable)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_ServerErrorIsRejection(t *testing.T) {
	s, srv := newStore(t)
	srv.Handle(func(cmd map[string]any) (any, string) {
		if cmd["cmd"] == "insert" {
			return nil, "duplicate"
		}
		return nil, ""
	})

	err := s.Insert(context.Background(), store.MessagesTable, store.Row{"email": "a@b.com"})
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "duplicate", se.Message)
}

func TestStore_TransportErrorIsNotRejection(t *testing.T) {
	s, srv := newStore(t)
	srv.Close()

	err := s.Insert(context.Background(), store.MessagesTable, store.Row{"email": "a@b.com"})
	require.Error(t, err)
	assert.False(t, store.IsRejection(err))
}

func TestStore_TimeoutBoundsInsert(t *testing.T) {
	s, srv := newStore(t, WithTimeout(50*time.Millisecond))
	srv.Handle(func(cmd map[string]any) (any, string) {
		if cmd["cmd"] == "insert" {
			time.Sleep(time.Second)
		}
		return nil, ""
	})

	start := time.Now()
	err := s.Insert(context.Background(), store.MessagesTable, store.Row{"email": "a@b.com"})
	require.Error(t, err)
	assert.False(t, store.IsRejection(err))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestStore_SlowRejectionNeverReportedAsSuccess(t *testing.T) {
	s, srv := newStore(t)
	srv.Handle(func(cmd map[string]any) (any, string) {
		switch cmd["cmd"] {
		case "ping":
			time.Sleep(300 * time.Millisecond)
		case "insert":
			return nil, "duplicate key"
		}
		return nil, ""
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.Error(t, s.Ping(ctx))

	// Every later insert reaches the server on a fresh connection and
	// comes back as the rejection it is.
	for range 4 {
		err := s.Insert(context.Background(), store.MessagesTable, store.Row{"email": "a@b.com"})
		var se *store.Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "duplicate key", se.Message)
	}
}
