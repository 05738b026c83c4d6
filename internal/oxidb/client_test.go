package oxidb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keketsolithane/keketso/internal/oxidb"
	"github.com/keketsolithane/keketso/internal/oxidb/oxidbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getClient(t *testing.T, srv *oxidbtest.Server) *oxidb.Client {
	t.Helper()
	c, err := oxidb.Connect(context.Background(), srv.Host, srv.Port, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPing(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	c := getClient(t, srv)

	pong, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", pong)
}

func TestInsertAndCount(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	c := getClient(t, srv)
	ctx := context.Background()

	id, err := c.Insert(ctx, "messages", map[string]any{"first_name": "Thabo", "email": "t@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	_, err = c.Insert(ctx, "messages", map[string]any{"first_name": "Lerato"})
	require.NoError(t, err)

	n, err := c.Count(ctx, "messages", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	docs := srv.Docs("messages")
	require.Len(t, docs, 2)
	assert.Equal(t, "Thabo", docs[0]["first_name"])
}

func TestCreateCollectionIsIdempotent(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	c := getClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.CreateCollection(ctx, "quotes"))
	require.NoError(t, c.CreateCollection(ctx, "quotes"))
	assert.Equal(t, []string{"create_collection", "create_collection"}, srv.Commands())
}

func TestServerError(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	srv.Handle(func(cmd map[string]any) (any, string) {
		if cmd["cmd"] == "insert" {
			return nil, "unique index violation on email"
		}
		return nil, ""
	})
	c := getClient(t, srv)

	_, err := c.Insert(context.Background(), "messages", map[string]any{"email": "dup@example.com"})
	var oe *oxidb.Error
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "unique index violation on email", oe.Msg)
	assert.Equal(t, "oxidb: unique index violation on email", err.Error())

	// A rejection is a complete exchange; the connection stays usable.
	assert.False(t, c.Broken())
	_, err = c.Ping(context.Background())
	assert.NoError(t, err)
}

func TestCanceledContext(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	c := getClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Ping(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, srv.Commands())
}

func TestConnectRefused(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	srv.Close()

	_, err := oxidb.Connect(context.Background(), srv.Host, srv.Port, time.Second)
	assert.ErrorContains(t, err, "oxidb: connect to")
}

func TestTimedOutRequestDropsConnection(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	srv.Handle(func(cmd map[string]any) (any, string) {
		switch cmd["cmd"] {
		case "ping":
			time.Sleep(300 * time.Millisecond)
		case "insert":
			return nil, "duplicate key"
		}
		return nil, ""
	})
	c := getClient(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := c.Ping(ctx)
	require.Error(t, err)
	assert.True(t, c.Broken())

	// The late "pong" must never be read as the answer to the insert.
	id, err := c.Insert(context.Background(), "messages", map[string]any{"email": "dup@example.com"})
	require.ErrorIs(t, err, oxidb.ErrBroken)
	assert.Empty(t, id)
	var oe *oxidb.Error
	assert.False(t, errors.As(err, &oe))
}

func TestCancelInterruptsRequest(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	srv.Handle(func(cmd map[string]any) (any, string) {
		if cmd["cmd"] == "insert" {
			time.Sleep(time.Second)
		}
		return nil, ""
	})
	c := getClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	id, err := c.Insert(ctx, "messages", map[string]any{"email": "slow@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, id)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.True(t, c.Broken())
}

func TestPingRejectsUnexpectedReply(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	srv.Handle(func(cmd map[string]any) (any, string) {
		if cmd["cmd"] == "ping" {
			return map[string]any{"id": 7}, ""
		}
		return nil, ""
	})
	c := getClient(t, srv)

	_, err := c.Ping(context.Background())
	assert.ErrorContains(t, err, "unexpected ping reply")
	assert.True(t, c.Broken())
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := oxidbtest.NewServer(t)
	c := getClient(t, srv)

	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	_, err := c.Ping(context.Background())
	assert.ErrorIs(t, err, oxidb.ErrBroken)
}
