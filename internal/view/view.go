// Package view renders the site's pages as templ components.
package view

import (
	"net/url"
	"slices"
	"strings"

	"github.com/a-h/templ"
	"github.com/keketsolithane/keketso/internal/models"
)

//go:generate templ generate

// Site is the company information shown in the layout and contact cards.
type Site struct {
	Name    string
	Email   string
	Phone   string
	Address string
	City    string
	Hours   string
	MapURL  string
}

// MailtoURL opens a prefilled enquiry in the visitor's mail client.
func (s Site) MailtoURL() templ.SafeURL {
	body := "Hello " + s.Name + ",\r\n\r\nI would like to inquire about your services.\r\n\r\nThank you."
	return templ.SafeURL("mailto:" + s.Email +
		"?subject=" + mailEscape("Inquiry from Website") +
		"&body=" + mailEscape(body))
}

func (s Site) TelURL() templ.SafeURL {
	return templ.SafeURL("tel:" + strings.NewReplacer("-", "", " ", "").Replace(s.Phone))
}

func mailEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Form is the state shared by both form pages.
type Form struct {
	Token   string
	Status  string
	Success bool
	Busy    bool
	Missing []string
}

// Invalid reports whether field was missing on the last attempt.
func (f Form) Invalid(field string) bool {
	return slices.Contains(f.Missing, field)
}

type ContactPage struct {
	Form
	Draft models.ContactMessage
}

type QuotePage struct {
	Form
	Draft models.QuoteRequest
}

// Selected reports whether service is ticked in the draft.
func (p QuotePage) Selected(service string) bool {
	return p.Draft.HasService(service)
}
