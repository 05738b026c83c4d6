package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keketsolithane/keketso/internal/models"
)

var (
	ErrUnknownField   = errors.New("unknown form field")
	ErrUnknownService = errors.New("unknown service")
	ErrNotTextField   = errors.New("field is not a text field")
)

// ContactFields are the keys a contact draft accepts, in form order.
var ContactFields = []string{"first_name", "last_name", "email", "phone", "subject", "message"}

var ContactMessages = Messages{
	Success:    "✅ Message sent successfully!",
	Rejected:   "❌ Error: %s",
	Unexpected: "❌ Unexpected error: %s",
}

// ContactForm is the draft behind the contact page.
type ContactForm struct {
	*Workflow
	draft models.ContactMessage
}

// NewContactForm starts an empty draft. An empty token gets a fresh one.
func NewContactForm(token string, guard *Guard) *ContactForm {
	return &ContactForm{Workflow: newWorkflow(token, guard, ContactMessages)}
}

// Update replaces one field of the draft.
func (f *ContactForm) Update(field, value string) error {
	switch field {
	case "first_name":
		f.draft.FirstName = value
	case "last_name":
		f.draft.LastName = value
	case "email":
		f.draft.Email = strings.TrimSpace(value)
	case "phone":
		f.draft.Phone = value
	case "subject":
		f.draft.Subject = value
	case "message":
		f.draft.Message = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func (f *ContactForm) Draft() models.ContactMessage { return f.draft }

func (f *ContactForm) Reset() { f.draft = models.ContactMessage{} }

// Submit hands the draft to send once it passes the required-field gate.
func (f *ContactForm) Submit(ctx context.Context, send func(context.Context, models.ContactMessage) error) (Outcome, error) {
	draft := f.draft
	return f.run(ctx, draft, func(ctx context.Context) error {
		return send(ctx, draft)
	}, f.Reset)
}
