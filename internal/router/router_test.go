package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keketsolithane/keketso/internal/form"
	"github.com/keketsolithane/keketso/internal/handler"
	"github.com/keketsolithane/keketso/internal/repository"
	"github.com/keketsolithane/keketso/internal/service"
	"github.com/keketsolithane/keketso/internal/store"
	"github.com/keketsolithane/keketso/internal/view"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type nopStore struct{}

func (nopStore) Insert(context.Context, string, store.Row) error { return nil }
func (nopStore) Ping(context.Context) error                      { return nil }

func TestRoutes(t *testing.T) {
	log, hook := test.NewNullLogger()
	guard := form.NewGuard()
	contact := service.NewContactService(repository.NewMessageRepo(nopStore{}), guard, log)
	quote := service.NewQuoteService(repository.NewQuoteRepo(nopStore{}), guard, log)
	r := New(log,
		handler.NewPageHandler(view.Site{Name: "Test"}, contact, quote, log),
		handler.NewAPIHandler(contact, quote),
		handler.NewHealthHandler(nopStore{}),
	)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/contact", "", http.StatusOK},
		{http.MethodGet, "/quote", "", http.StatusOK},
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/api/v1/catalogue", "", http.StatusOK},
		{http.MethodPost, "/api/v1/messages", `{"first_name":"A"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/quotes", `{"first_name":"A","last_name":"B","email":"a@b.com","title":"T","description":"D"}`, http.StatusCreated},
		{http.MethodDelete, "/contact", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/admin", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.NotEmpty(t, hook.AllEntries())
}
