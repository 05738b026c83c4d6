package form

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/keketsolithane/keketso/internal/models"
)

// QuoteFields are the text keys a quote draft accepts, in form order.
// Services is changed through ToggleService.
var QuoteFields = []string{
	"first_name", "last_name", "email", "phone", "company",
	"title", "description", "budget", "timeline",
}

var QuoteMessages = Messages{
	Success:    "Quote request successfully submitted.",
	Rejected:   "Failed to submit: %s",
	Unexpected: "Failed to submit: unexpected error: %s",
}

// QuoteForm is the draft behind the quote page.
type QuoteForm struct {
	*Workflow
	draft models.QuoteRequest
}

func NewQuoteForm(token string, guard *Guard) *QuoteForm {
	return &QuoteForm{
		Workflow: newWorkflow(token, guard, QuoteMessages),
		draft:    models.EmptyQuote(),
	}
}

// Update replaces one text field of the draft.
func (f *QuoteForm) Update(field, value string) error {
	switch field {
	case "first_name":
		f.draft.FirstName = value
	case "last_name":
		f.draft.LastName = value
	case "email":
		f.draft.Email = strings.TrimSpace(value)
	case "phone":
		f.draft.Phone = value
	case "company":
		f.draft.Company = value
	case "title":
		f.draft.Title = value
	case "description":
		f.draft.Description = value
	case "budget":
		f.draft.Budget = value
	case "timeline":
		f.draft.Timeline = value
	case "services":
		return fmt.Errorf("%w: %q", ErrNotTextField, field)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// ToggleService selects item if it is not selected and deselects it if it is.
func (f *QuoteForm) ToggleService(item string) error {
	if !models.IsService(item) {
		return fmt.Errorf("%w: %q", ErrUnknownService, item)
	}
	if i := slices.Index(f.draft.Services, item); i >= 0 {
		f.draft.Services = slices.Delete(slices.Clone(f.draft.Services), i, i+1)
		return nil
	}
	f.draft.Services = append(slices.Clone(f.draft.Services), item)
	return nil
}

// Draft returns a copy of the draft; its Services slice is not shared.
func (f *QuoteForm) Draft() models.QuoteRequest {
	d := f.draft
	d.Services = slices.Clone(f.draft.Services)
	return d
}

func (f *QuoteForm) Reset() { f.draft = models.EmptyQuote() }

func (f *QuoteForm) Submit(ctx context.Context, send func(context.Context, models.QuoteRequest) error) (Outcome, error) {
	draft := f.Draft()
	return f.run(ctx, draft, func(ctx context.Context) error {
		return send(ctx, draft)
	}, f.Reset)
}
