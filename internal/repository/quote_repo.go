package repository

import (
	"context"

	"github.com/keketsolithane/keketso/internal/models"
	"github.com/keketsolithane/keketso/internal/store"
)

type QuoteRepo struct {
	store store.Inserter
}

func NewQuoteRepo(s store.Inserter) *QuoteRepo {
	return &QuoteRepo{store: s}
}

// Create writes q as one row of the quotes table. An empty service set is
// written as [] rather than null.
func (r *QuoteRepo) Create(ctx context.Context, q models.QuoteRequest) error {
	if q.Services == nil {
		q.Services = []string{}
	}
	row, err := toRow(q)
	if err != nil {
		return err
	}
	return r.store.Insert(ctx, store.QuotesTable, row)
}
