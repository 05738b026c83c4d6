package service

import (
	"context"
	"errors"
	"testing"

	"github.com/keketsolithane/keketso/internal/form"
	"github.com/keketsolithane/keketso/internal/repository"
	"github.com/keketsolithane/keketso/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	tables []string
	rows   []store.Row
	err    error
}

func (f *fakeStore) Insert(_ context.Context, table string, row store.Row) error {
	f.tables = append(f.tables, table)
	f.rows = append(f.rows, row)
	return f.err
}

func TestContactService_Submit(t *testing.T) {
	log, hook := test.NewNullLogger()
	fs := &fakeStore{}
	svc := NewContactService(repository.NewMessageRepo(fs), form.NewGuard(), log)

	f := svc.NewForm("")
	for k, v := range map[string]string{
		"first_name": "A", "last_name": "B", "email": "a@b.com", "subject": "Hi", "message": "Test",
	} {
		require.NoError(t, f.Update(k, v))
	}
	outcome, err := svc.Submit(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, form.OutcomeSuccess, outcome)
	assert.Equal(t, []string{store.MessagesTable}, fs.tables)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "contact", entry.Data["form"])
	assert.Equal(t, "success", entry.Data["outcome"])
}

func TestQuoteService_RejectionIsLoggedAsWarning(t *testing.T) {
	log, hook := test.NewNullLogger()
	fs := &fakeStore{err: &store.Error{Message: "duplicate"}}
	svc := NewQuoteService(repository.NewQuoteRepo(fs), form.NewGuard(), log)

	f := svc.NewForm("")
	for k, v := range map[string]string{
		"first_name": "A", "last_name": "B", "email": "a@b.com", "title": "T", "description": "D",
	} {
		require.NoError(t, f.Update(k, v))
	}
	require.NoError(t, f.ToggleService("Web Development"))
	require.NoError(t, f.ToggleService("UI/UX Design"))

	outcome, err := svc.Submit(context.Background(), f)
	require.Error(t, err)

	assert.Equal(t, form.OutcomeFailure, outcome)
	assert.Equal(t, "Failed to submit: duplicate", f.Status())
	assert.Equal(t, []string{"Web Development", "UI/UX Design"}, f.Draft().Services)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, 2, entry.Data["services"])
}

func TestQuoteService_TransportFailureIsLoggedAsError(t *testing.T) {
	log, hook := test.NewNullLogger()
	fs := &fakeStore{err: errors.New("connection reset")}
	svc := NewQuoteService(repository.NewQuoteRepo(fs), form.NewGuard(), log)

	f := svc.NewForm("")
	for k, v := range map[string]string{
		"first_name": "A", "last_name": "B", "email": "a@b.com", "title": "T", "description": "D",
	} {
		require.NoError(t, f.Update(k, v))
	}
	outcome, _ := svc.Submit(context.Background(), f)

	assert.Equal(t, form.OutcomeFailure, outcome)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestService_SharedGuard(t *testing.T) {
	log, _ := test.NewNullLogger()
	guard := form.NewGuard()
	svc := NewContactService(repository.NewMessageRepo(&fakeStore{}), guard, log)

	f := svc.NewForm("tok")
	require.True(t, guard.Acquire("tok"))
	defer guard.Release("tok")
	for k, v := range map[string]string{
		"first_name": "A", "last_name": "B", "email": "a@b.com", "subject": "Hi", "message": "Test",
	} {
		require.NoError(t, f.Update(k, v))
	}
	outcome, err := svc.Submit(context.Background(), f)
	assert.Equal(t, form.OutcomeBusy, outcome)
	assert.ErrorIs(t, err, form.ErrBusy)
}
