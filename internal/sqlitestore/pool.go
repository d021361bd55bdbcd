// Copyright (c) 2026 FractalDB Authors. All rights reserved.

/*
Package sqlitestore is the concrete SQLite backend behind the [Backend]
contract of §6.2. It wraps [modernc.org/sqlite], the pure-Go driver the
wider example corpus uses for embedded SQLite access, tuned with the
pragmas FractalDB's JSON1/generated-column/transaction contract requires
(busy_timeout, journal_mode, foreign_keys).
*/
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/g5becks/fractaldb/internal/dbconfig"
)

// Executor is satisfied by both *sql.DB and *sql.Tx, letting collection
// operations run identically whether or not they are inside an explicit
// transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open establishes a file-backed SQLite connection at path, applies the
// configured pragmas, and verifies connectivity with a ping.
func Open(ctx context.Context, path string, cfg dbconfig.Config, logger *slog.Logger) (*sql.DB, error) {
	return open(ctx, path, cfg, logger)
}

// OpenInMemory establishes an ephemeral, process-local SQLite database.
// Each call yields an independent database even within the same process,
// per the standard SQLite ":memory:" semantics coupled with a single
// pooled connection (required so the schema is not lost between
// connections).
func OpenInMemory(ctx context.Context, cfg dbconfig.Config, logger *slog.Logger) (*sql.DB, error) {
	return open(ctx, ":memory:", cfg, logger)
}

func open(ctx context.Context, dsn string, cfg dbconfig.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: invalid dsn: %w", err)
	}

	// A single physical connection keeps an in-memory database's schema
	// alive across statements and avoids SQLITE_BUSY storms from
	// concurrent writers contending on the one file-level lock.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db, cfg); err != nil {
		db.Close()
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: ping failed: %w", err)
	}

	if logger != nil {
		logger.Info("sqlitestore connected",
			slog.String("journal_mode", cfg.JournalMode),
			slog.Int("busy_timeout_ms", cfg.BusyTimeoutMS),
		)
	}

	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, cfg dbconfig.Config) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeoutMS),
		fmt.Sprintf("PRAGMA journal_mode = %s", cfg.JournalMode),
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("sqlitestore: failed to apply %q: %w", p, err)
		}
	}
	return nil
}
