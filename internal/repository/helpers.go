package repository

import (
	"encoding/json"
	"fmt"

	"github.com/keketsolithane/keketso/internal/store"
)

// toRow flattens a record into a store row keyed by its json column names.
func toRow(v any) (store.Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal row: %w", err)
	}
	var row store.Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("unmarshal row: %w", err)
	}
	return row, nil
}
