package repository

import (
	"context"

	"github.com/keketsolithane/keketso/internal/models"
	"github.com/keketsolithane/keketso/internal/store"
)

type MessageRepo struct {
	store store.Inserter
}

func NewMessageRepo(s store.Inserter) *MessageRepo {
	return &MessageRepo{store: s}
}

// Create writes msg as one row of the messages table.
func (r *MessageRepo) Create(ctx context.Context, msg models.ContactMessage) error {
	row, err := toRow(msg)
	if err != nil {
		return err
	}
	return r.store.Insert(ctx, store.MessagesTable, row)
}
