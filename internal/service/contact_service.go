package service

import (
	"context"

	"github.com/keketsolithane/keketso/internal/form"
	"github.com/keketsolithane/keketso/internal/repository"
	"github.com/sirupsen/logrus"
)

// ContactService runs contact drafts against the messages table. All drafts
// it creates share one in-flight guard.
type ContactService struct {
	messages *repository.MessageRepo
	guard    *form.Guard
	log      logrus.FieldLogger
}

func NewContactService(messages *repository.MessageRepo, guard *form.Guard, log logrus.FieldLogger) *ContactService {
	return &ContactService{messages: messages, guard: guard, log: log.WithField("form", "contact")}
}

// NewForm starts a draft for token. An empty token gets a fresh one.
func (s *ContactService) NewForm(token string) *form.ContactForm {
	return form.NewContactForm(token, s.guard)
}

// Submit runs the submission workflow for f.
func (s *ContactService) Submit(ctx context.Context, f *form.ContactForm) (form.Outcome, error) {
	token := f.Token()
	outcome, err := f.Submit(ctx, s.messages.Create)
	logOutcome(s.log.WithField("token", token), outcome, err)
	return outcome, err
}
