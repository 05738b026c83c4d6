package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/keketsolithane/keketso/internal/handler"
	mw "github.com/keketsolithane/keketso/internal/middleware"
	"github.com/sirupsen/logrus"
)

func New(
	log logrus.FieldLogger,
	pageH *handler.PageHandler,
	apiH *handler.APIHandler,
	healthH *handler.HealthHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Recovery(log))
	r.Use(mw.Logger(log))

	// Pages
	r.Get("/", pageH.Home)
	r.Get("/contact", pageH.Contact)
	r.Post("/contact", pageH.SubmitContact)
	r.Get("/quote", pageH.Quote)
	r.Post("/quote", pageH.SubmitQuote)

	r.Get("/healthz", healthH.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalogue", apiH.Catalogue)
		r.Post("/messages", apiH.CreateMessage)
		r.Post("/quotes", apiH.CreateQuote)
	})

	return r
}
