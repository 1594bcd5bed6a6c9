package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

//go:embed schema.sql
var schemaSQL string

// Config holds persona archive database settings
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Repositories bundles the archive's repositories over one shared connection
type Repositories struct {
	Persona *PersonaRepository
	DB      *sqlx.DB
}

// NewRepositories opens the archive database, applies pragmas and schema, and
// wires up the repositories
func NewRepositories(ctx context.Context, cfg Config) (*Repositories, error) {
	db, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Repositories{Persona: NewPersonaRepository(db), DB: db}, nil
}

// Close closes the shared database connection
func (r *Repositories) Close() error { return r.DB.Close() }

// Ping verifies the database connection
func (r *Repositories) Ping(ctx context.Context) error { return r.DB.PingContext(ctx) }

func open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = "file:personascope.db?cache=shared&mode=rwc&_txlock=immediate"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// WAL keeps archive writes from blocking the read-only server
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// criticalError marks an error as not worth retrying, the save loop returns
// it to the caller as-is
type criticalError struct {
	err error
}

func (e *criticalError) Error() string { return e.err.Error() }

// isLockError reports whether err is SQLite lock/busy contention, the only
// failure class the save loop retries
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
