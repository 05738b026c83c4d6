package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/keketsolithane/keketso/internal/form"
)

// TokenHeader carries the form token on API submissions.
const TokenHeader = "X-Form-Token"

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.UseNumber()
	return dec.Decode(v)
}

// statusFor maps a submission outcome to a response code. created is the
// code used for success.
func statusFor(outcome form.Outcome, created int) int {
	switch outcome {
	case form.OutcomeSuccess:
		return created
	case form.OutcomeIncomplete:
		return http.StatusBadRequest
	case form.OutcomeBusy:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func missingFields(err error) []string {
	var ie *form.IncompleteError
	if errors.As(err, &ie) {
		return ie.Fields
	}
	return nil
}

// dedupe drops repeated values, keeping first occurrences in order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
