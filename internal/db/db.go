// Package db wraps the Postgres ledger backing the optional server (C11):
// one row per run, one row per stage job, one row per stored asset. The
// core pipeline never imports this package — it is filesystem-only.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB with the connection-string bootstrap the rest of the
// package's query files assume.
type DB struct {
	*sql.DB
}

// New opens and verifies a Postgres connection pool for the given DSN.
func New(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB}, nil
}
