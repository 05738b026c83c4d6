package handler

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/keketsolithane/keketso/internal/form"
	"github.com/keketsolithane/keketso/internal/service"
	"github.com/keketsolithane/keketso/internal/view"
	"github.com/sirupsen/logrus"
)

// PageHandler serves the HTML pages and their form posts.
type PageHandler struct {
	site    view.Site
	contact *service.ContactService
	quote   *service.QuoteService
	log     logrus.FieldLogger
}

func NewPageHandler(site view.Site, contact *service.ContactService, quote *service.QuoteService, log logrus.FieldLogger) *PageHandler {
	return &PageHandler{site: site, contact: contact, quote: quote, log: log}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	templ.Handler(view.Home(h.site)).ServeHTTP(w, r)
}

func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	f := h.contact.NewForm("")
	h.render(w, r, http.StatusOK, view.Contact(h.site, view.ContactPage{
		Form:  view.Form{Token: f.Token()},
		Draft: f.Draft(),
	}))
}

func (h *PageHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	f := h.contact.NewForm(r.PostForm.Get("form_token"))
	for _, field := range form.ContactFields {
		if err := f.Update(field, r.PostForm.Get(field)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	outcome, err := h.contact.Submit(r.Context(), f)
	h.render(w, r, statusFor(outcome, http.StatusOK), view.Contact(h.site, view.ContactPage{
		Form:  formState(f.Workflow, outcome, err),
		Draft: f.Draft(),
	}))
}

func (h *PageHandler) Quote(w http.ResponseWriter, r *http.Request) {
	f := h.quote.NewForm("")
	h.render(w, r, http.StatusOK, view.Quote(h.site, view.QuotePage{
		Form:  view.Form{Token: f.Token()},
		Draft: f.Draft(),
	}))
}

func (h *PageHandler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	f := h.quote.NewForm(r.PostForm.Get("form_token"))
	for _, field := range form.QuoteFields {
		if err := f.Update(field, r.PostForm.Get(field)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	for _, s := range dedupe(r.PostForm["services"]) {
		if err := f.ToggleService(s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	outcome, err := h.quote.Submit(r.Context(), f)
	h.render(w, r, statusFor(outcome, http.StatusOK), view.Quote(h.site, view.QuotePage{
		Form:  formState(f.Workflow, outcome, err),
		Draft: f.Draft(),
	}))
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(status), templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("render page")
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
	})).ServeHTTP(w, r)
}

func formState(wf *form.Workflow, outcome form.Outcome, err error) view.Form {
	return view.Form{
		Token:   wf.Token(),
		Status:  wf.Status(),
		Success: outcome == form.OutcomeSuccess,
		Busy:    errors.Is(err, form.ErrBusy),
		Missing: missingFields(err),
	}
}
