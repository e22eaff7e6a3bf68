package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"romcat/internal/config"
	"romcat/internal/services"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Every entity operation is defined on Ops so it runs identically against
// the raw connection and inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Ops carries all catalog entity operations over some querier.
type Ops struct {
	q querier
}

// Store manages catalog persistence backed by SQLite.
type Store struct {
	Ops
	db   *sql.DB
	path string
}

// Tx exposes the same entity operations scoped to one transaction.
type Tx struct {
	Ops
	tx *sql.Tx
}

// Open initializes or connects to the catalog database at the configured
// path and verifies the schema version.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "open", "ensure directories", err)
	}
	return OpenPath(cfg.CatalogDBPath())
}

// OpenPath opens the catalog database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "catalog", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStore, "catalog", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{Ops: Ops{q: db}, db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// WithTx runs fn inside a single transaction. Every multi-write flow
// (import, resolve, override application, reconciliation) goes through
// here so a failure leaves the catalog exactly as it was.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrStore, "catalog", "tx", "begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Tx{Ops: Ops{q: tx}, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrStore, "catalog", "tx", "commit", err)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func storeErr(operation, message string, err error) error {
	return services.Wrap(services.ErrStore, "catalog", operation, message, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, services.ErrNotFound)
}

func notFoundOrStore(operation, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return services.Wrap(services.ErrNotFound, "catalog", operation, id, nil)
	}
	return storeErr(operation, id, err)
}
