package form

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/keketsolithane/keketso/internal/models"
	"github.com/keketsolithane/keketso/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder[T any] struct {
	calls []T
	err   error
}

func (r *recorder[T]) send(_ context.Context, v T) error {
	r.calls = append(r.calls, v)
	return r.err
}

func fillContact(t *testing.T, f *ContactForm, values map[string]string) {
	t.Helper()
	for k, v := range values {
		require.NoError(t, f.Update(k, v))
	}
}

func TestContactForm_Update(t *testing.T) {
	f := NewContactForm("", nil)
	require.NoError(t, f.Update("first_name", "Thabo"))
	require.NoError(t, f.Update("subject", "Website"))
	require.NoError(t, f.Update("first_name", "Lerato"))

	assert.Equal(t, models.ContactMessage{FirstName: "Lerato", Subject: "Website"}, f.Draft())
}

func TestContactForm_UpdateUnknownField(t *testing.T) {
	f := NewContactForm("", nil)
	require.NoError(t, f.Update("email", "a@b.com"))

	err := f.Update("company", "Acme")
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, models.ContactMessage{Email: "a@b.com"}, f.Draft())
}

func TestContactForm_SubmitSuccess(t *testing.T) {
	f := NewContactForm("", nil)
	fillContact(t, f, map[string]string{
		"first_name": "A",
		"last_name":  "B",
		"email":      "a@b.com",
		"subject":    "Hi",
		"message":    "Test",
	})
	token := f.Token()
	rec := &recorder[models.ContactMessage]{}

	outcome, err := f.Submit(context.Background(), rec.send)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, Succeeded, f.State())
	assert.Equal(t, "✅ Message sent successfully!", f.Status())
	assert.Equal(t, models.ContactMessage{}, f.Draft())
	assert.NotEqual(t, token, f.Token())
	require.Len(t, rec.calls, 1)
	assert.Equal(t, models.ContactMessage{
		FirstName: "A", LastName: "B", Email: "a@b.com", Subject: "Hi", Message: "Test",
	}, rec.calls[0])
}

func TestContactForm_SubmitRejected(t *testing.T) {
	f := NewContactForm("tok", nil)
	fillContact(t, f, map[string]string{
		"first_name": "A", "last_name": "B", "email": "a@b.com", "subject": "Hi", "message": "Test",
	})
	before := f.Draft()
	rec := &recorder[models.ContactMessage]{err: &store.Error{Code: "42501", Message: "permission denied for table messages"}}

	outcome, err := f.Submit(context.Background(), rec.send)
	require.Error(t, err)

	assert.Equal(t, OutcomeFailure, outcome)
	assert.Equal(t, Failed, f.State())
	assert.Equal(t, "❌ Error: permission denied for table messages", f.Status())
	assert.Equal(t, before, f.Draft())
	assert.Equal(t, "tok", f.Token())
}

func TestContactForm_SubmitTransportFailure(t *testing.T) {
	f := NewContactForm("", nil)
	fillContact(t, f, map[string]string{
		"first_name": "A", "last_name": "B", "email": "a@b.com", "subject": "Hi", "message": "Test",
	})
	rec := &recorder[models.ContactMessage]{err: errors.New("dial tcp: connection refused")}

	outcome, _ := f.Submit(context.Background(), rec.send)

	assert.Equal(t, OutcomeFailure, outcome)
	assert.True(t, strings.HasPrefix(f.Status(), "❌ Unexpected error: "))
	assert.Contains(t, f.Status(), "connection refused")
	assert.Equal(t, "A", f.Draft().FirstName)
}

func TestContactForm_RetryAfterFailure(t *testing.T) {
	f := NewContactForm("", nil)
	fillContact(t, f, map[string]string{
		"first_name": "A", "last_name": "B", "email": "a@b.com", "subject": "Hi", "message": "Test",
	})
	rec := &recorder[models.ContactMessage]{err: errors.New("timeout")}
	_, _ = f.Submit(context.Background(), rec.send)

	rec.err = nil
	outcome, err := f.Submit(context.Background(), rec.send)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Len(t, rec.calls, 2)
	assert.Equal(t, rec.calls[0], rec.calls[1])
}

func TestContactForm_RequiredFieldsBlockSubmit(t *testing.T) {
	complete := map[string]string{
		"first_name": "A", "last_name": "B", "email": "a@b.com", "subject": "Hi", "message": "Test",
	}
	for _, field := range []string{"first_name", "last_name", "email", "subject", "message"} {
		t.Run(field, func(t *testing.T) {
			f := NewContactForm("", nil)
			fillContact(t, f, complete)
			require.NoError(t, f.Update(field, ""))
			rec := &recorder[models.ContactMessage]{}

			outcome, err := f.Submit(context.Background(), rec.send)

			assert.Equal(t, OutcomeIncomplete, outcome)
			var inc *IncompleteError
			require.ErrorAs(t, err, &inc)
			assert.Equal(t, []string{field}, inc.Fields)
			assert.Empty(t, rec.calls)
			assert.Equal(t, Idle, f.State())
			assert.Empty(t, f.Status())
		})
	}
}

func TestContactForm_PhoneIsOptional(t *testing.T) {
	f := NewContactForm("", nil)
	fillContact(t, f, map[string]string{
		"first_name": "A", "last_name": "B", "email": "a@b.com", "subject": "Hi", "message": "Test",
	})
	rec := &recorder[models.ContactMessage]{}

	outcome, err := f.Submit(context.Background(), rec.send)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, "", rec.calls[0].Phone)
}

func TestContactForm_MalformedEmailBlocksSubmit(t *testing.T) {
	f := NewContactForm("", nil)
	fillContact(t, f, map[string]string{
		"first_name": "A", "last_name": "B", "email": "not-an-email", "subject": "Hi", "message": "Test",
	})
	rec := &recorder[models.ContactMessage]{}

	outcome, err := f.Submit(context.Background(), rec.send)

	assert.Equal(t, OutcomeIncomplete, outcome)
	assert.EqualError(t, err, "form incomplete: email")
	assert.Empty(t, rec.calls)
}

func TestContactForm_EmailMatchesBrowserRules(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain", "thabo@example.co.ls", "thabo@example.co.ls", true},
		{"dotless domain", "a@b", "a@b", true},
		{"surrounding space", "  a@b.com\t", "a@b.com", true},
		{"plus tag", "a+site@b.com", "a+site@b.com", true},
		{"no at", "nope", "nope", false},
		{"two ats", "a@@b.com", "a@@b.com", false},
		{"space inside", "a b@c.com", "a b@c.com", false},
		{"trailing dot", "a@b.", "a@b.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewContactForm("", nil)
			fillContact(t, f, map[string]string{
				"first_name": "A", "last_name": "B", "email": tt.input, "subject": "Hi", "message": "Test",
			})
			assert.Equal(t, tt.want, f.Draft().Email)

			rec := &recorder[models.ContactMessage]{}
			outcome, err := f.Submit(context.Background(), rec.send)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, OutcomeSuccess, outcome)
				require.Len(t, rec.calls, 1)
				assert.Equal(t, tt.want, rec.calls[0].Email)
				return
			}
			assert.Equal(t, OutcomeIncomplete, outcome)
			assert.EqualError(t, err, "form incomplete: email")
			assert.Empty(t, rec.calls)
		})
	}
}
