package service

import (
	"context"

	"github.com/keketsolithane/keketso/internal/form"
	"github.com/keketsolithane/keketso/internal/repository"
	"github.com/sirupsen/logrus"
)

// QuoteService runs quote drafts against the quotes table.
type QuoteService struct {
	quotes *repository.QuoteRepo
	guard  *form.Guard
	log    logrus.FieldLogger
}

func NewQuoteService(quotes *repository.QuoteRepo, guard *form.Guard, log logrus.FieldLogger) *QuoteService {
	return &QuoteService{quotes: quotes, guard: guard, log: log.WithField("form", "quote")}
}

func (s *QuoteService) NewForm(token string) *form.QuoteForm {
	return form.NewQuoteForm(token, s.guard)
}

func (s *QuoteService) Submit(ctx context.Context, f *form.QuoteForm) (form.Outcome, error) {
	token := f.Token()
	services := len(f.Draft().Services)
	outcome, err := f.Submit(ctx, s.quotes.Create)
	logOutcome(s.log.WithFields(logrus.Fields{"token": token, "services": services}), outcome, err)
	return outcome, err
}
