package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/keketsolithane/keketso/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	for _, table := range []string{store.MessagesTable, store.QuotesTable} {
		n, err := s.Count(ctx, table)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, store.MessagesTable, store.Row{
		"first_name": "A", "last_name": "B", "email": "a@b.com", "subject": "Hi", "message": "Test",
	}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(ctx, store.MessagesTable)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsert_Quote(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	err := s.Insert(ctx, store.QuotesTable, store.Row{
		"first_name":  "Palesa",
		"last_name":   "Mokoena",
		"email":       "palesa@example.com",
		"phone":       "",
		"company":     "Maluti Foods",
		"title":       "Online shop",
		"description": "Catalogue and checkout",
		"services":    []any{"Web Development", "UI/UX Design"},
		"budget":      "10000-25000",
		"timeline":    "3-6months",
	})
	require.NoError(t, err)

	var services string
	require.NoError(t, s.dbConn.GetContext(ctx, &services, "SELECT services FROM quotes"))
	assert.JSONEq(t, `["Web Development","UI/UX Design"]`, services)
}

func TestInsert_ConstraintIsRejection(t *testing.T) {
	s := openTemp(t)

	err := s.Insert(context.Background(), store.MessagesTable, store.Row{
		"first_name": "", "last_name": "B", "email": "a@b.com", "subject": "Hi", "message": "Test",
	})
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "CHECK constraint failed")
}

func TestInsert_UnknownTableAndColumn(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	err := s.Insert(ctx, "orders", store.Row{})
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "42P01", se.Code)

	err = s.Insert(ctx, store.MessagesTable, store.Row{"first_name": "A", "fax": "123"})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Could not find the 'fax' column of 'messages'", se.Message)
}
