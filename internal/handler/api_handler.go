package handler

import (
	"fmt"
	"net/http"

	"github.com/keketsolithane/keketso/internal/form"
	"github.com/keketsolithane/keketso/internal/models"
	"github.com/keketsolithane/keketso/internal/service"
)

// APIHandler accepts JSON submissions. The form token comes from the
// X-Form-Token header; without it each request is its own draft.
type APIHandler struct {
	contact *service.ContactService
	quote   *service.QuoteService
}

func NewAPIHandler(contact *service.ContactService, quote *service.QuoteService) *APIHandler {
	return &APIHandler{contact: contact, quote: quote}
}

type submitResponse struct {
	OK      bool     `json:"ok"`
	Status  string   `json:"status"`
	Missing []string `json:"missing,omitempty"`
	Error   string   `json:"error,omitempty"`
	Token   string   `json:"token"`
}

func (h *APIHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f := h.contact.NewForm(r.Header.Get(TokenHeader))
	for k, v := range body {
		s, ok := v.(string)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("field %q must be a string", k))
			return
		}
		if err := f.Update(k, s); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	outcome, err := h.contact.Submit(r.Context(), f)
	writeJSON(w, statusFor(outcome, http.StatusCreated), response(f.Workflow, outcome, err))
}

func (h *APIHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f := h.quote.NewForm(r.Header.Get(TokenHeader))
	for k, v := range body {
		if k == "services" {
			items, err := stringList(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			for _, item := range dedupe(items) {
				if err := f.ToggleService(item); err != nil {
					writeError(w, http.StatusBadRequest, err.Error())
					return
				}
			}
			continue
		}
		s, ok := v.(string)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("field %q must be a string", k))
			return
		}
		if err := f.Update(k, s); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	outcome, err := h.quote.Submit(r.Context(), f)
	writeJSON(w, statusFor(outcome, http.StatusCreated), response(f.Workflow, outcome, err))
}

// Catalogue lists the values a quote request may pick from.
func (h *APIHandler) Catalogue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"services":  models.Services,
		"budgets":   models.BudgetOptions,
		"timelines": models.TimelineOptions,
	})
}

func response(wf *form.Workflow, outcome form.Outcome, err error) submitResponse {
	resp := submitResponse{
		OK:      outcome == form.OutcomeSuccess,
		Status:  wf.Status(),
		Missing: missingFields(err),
		Token:   wf.Token(),
	}
	if err != nil && outcome != form.OutcomeFailure {
		resp.Error = err.Error()
	}
	return resp
}

func stringList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q must be a list of strings", "services")
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("field %q must be a list of strings", "services")
		}
		out = append(out, s)
	}
	return out, nil
}
