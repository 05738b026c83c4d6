package models

// QuoteRequest is one row of the quotes table.
type QuoteRequest struct {
	FirstName   string   `json:"first_name" validate:"required"`
	LastName    string   `json:"last_name" validate:"required"`
	Email       string   `json:"email" validate:"required,mailbox"`
	Phone       string   `json:"phone"`
	Company     string   `json:"company"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Services    []string `json:"services" validate:"dive,service"`
	Budget      string   `json:"budget" validate:"omitempty,budget"`
	Timeline    string   `json:"timeline" validate:"omitempty,timeline"`
}

// EmptyQuote returns the initial shape of a quote draft. Services is an
// empty, non-nil set so it serializes as [] rather than null.
func EmptyQuote() QuoteRequest {
	return QuoteRequest{Services: []string{}}
}

// HasService reports whether s is selected on q.
func (q QuoteRequest) HasService(s string) bool {
	for _, v := range q.Services {
		if v == s {
			return true
		}
	}
	return false
}
