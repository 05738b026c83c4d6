// Package store defines the insert-row boundary between the site and the
// hosted data store that keeps submitted messages and quote requests.
package store

import (
	"context"
	"errors"
)

// Tables written by the site.
const (
	MessagesTable = "messages"
	QuotesTable   = "quotes"
)

var (
	ErrMissingURL = errors.New("store url is not set")
	ErrMissingKey = errors.New("store access key is not set")
)

// Row is a flat record keyed by column name.
type Row map[string]any

// Inserter writes one row into a table.
type Inserter interface {
	Insert(ctx context.Context, table string, row Row) error
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter reports how many rows a table holds. Backends that can answer
// cheaply implement it; `keketso check` prints the counts when present.
type Counter interface {
	Count(ctx context.Context, table string) (int, error)
}

// Store is a backend the process holds for its whole lifetime.
type Store interface {
	Inserter
	Pinger
	Close() error
}
