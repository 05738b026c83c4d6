// Package sqlite keeps submissions in a local SQLite file. It stands in for
// the hosted store during development and in environments without one.
package sqlite

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/keketsolithane/keketso/internal/store"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// columns lists the writable columns of every table the migrations create.
var columns = map[string][]string{
	store.MessagesTable: {"first_name", "last_name", "email", "phone", "subject", "message"},
	store.QuotesTable: {
		"first_name", "last_name", "email", "phone", "company",
		"title", "description", "services", "budget", "timeline",
	},
}

type Store struct {
	dbConn *sqlx.DB
}

var (
	_ store.Store   = (*Store)(nil)
	_ store.Counter = (*Store)(nil)
)

// Open connects to the SQLite file at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to db : %w", err)
	}
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting dialect for migrations : %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migration : %w", err)
	}
	return &Store{dbConn: db}, nil
}

// Insert writes row into table. Unknown tables or columns and constraint
// failures are reported as *store.Error, the way the hosted store reports
// them.
func (s *Store) Insert(ctx context.Context, table string, row store.Row) error {
	cols, ok := columns[table]
	if !ok {
		return &store.Error{Code: "42P01", Message: fmt.Sprintf("relation %q does not exist", table)}
	}
	if extra := unknownColumns(cols, row); len(extra) > 0 {
		return &store.Error{
			Code:    "PGRST204",
			Message: fmt.Sprintf("Could not find the '%s' column of '%s'", extra[0], table),
		}
	}

	args := map[string]any{
		"id":         uuid.NewString(),
		"created_at": time.Now().UTC(),
	}
	for _, c := range cols {
		v, err := columnValue(row[c])
		if err != nil {
			return fmt.Errorf("encoding %s.%s: %w", table, c, err)
		}
		args[c] = v
	}
	query := fmt.Sprintf("INSERT INTO %s (id, created_at, %s) VALUES (:id, :created_at, :%s)",
		table, strings.Join(cols, ", "), strings.Join(cols, ", :"))

	if _, err := s.dbConn.NamedExecContext(ctx, query, args); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
		return &store.Error{Message: err.Error()}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.dbConn.PingContext(ctx)
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if _, ok := columns[table]; !ok {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := s.dbConn.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// Close terminates the database connection.
func (s *Store) Close() error {
	if err := s.dbConn.Close(); err != nil {
		return fmt.Errorf("closing store : %w", err)
	}
	return nil
}

func unknownColumns(cols []string, row store.Row) []string {
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c] = true
	}
	var extra []string
	for k := range row {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}

// columnValue maps a row value onto a TEXT column. Lists are stored as JSON.
func columnValue(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []string, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return fmt.Sprint(t), nil
	}
}
