// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	"github.com/g5becks/fractaldb/internal/dbconfig"
	"github.com/g5becks/fractaldb/internal/idgen"
	"github.com/g5becks/fractaldb/internal/sqlitestore"
	"github.com/g5becks/fractaldb/retry"
)

// Options configures a [Database]: the id factory new documents are minted
// with, whether the per-collection translator cache is on by default, and
// an optional database-wide retry policy (§5, lowest precedence).
type Options struct {
	// IDFactory generates new document ids. Defaults to a time-sortable
	// UUIDv7 factory ([idgen.New]).
	IDFactory idgen.Factory
	// CacheEnabled is the default translator-cache setting for collections
	// materialised under this database.
	CacheEnabled bool
	// TranslatorCacheSize bounds each collection's translator LRU. Clamped
	// to [dbconfig.MaxTranslatorCacheSize].
	TranslatorCacheSize int
	// RetryPolicy is the database-level retry policy, the lowest-precedence
	// fallback in the operation > collection > database chain (§5).
	RetryPolicy *retry.Policy
	// Logger receives the connection log line written when the database is
	// opened. Defaults to [slog.Default]. Collection materialisation and
	// transaction logs go to the logger carried by the operation's context,
	// not to this one.
	Logger *slog.Logger
	// Config carries the connection settings (busy timeout, journal mode).
	// [DefaultOptions] fills it from [dbconfig.Load]; otherwise a zero busy
	// timeout becomes 5000 ms and an empty journal mode becomes "WAL".
	Config dbconfig.Config
}

// DefaultOptions returns Options populated from the environment via
// [dbconfig.Load], with every other field at its zero-retry, cache-enabled
// default.
func DefaultOptions() Options {
	opts := Options{
		IDFactory:           idgen.New,
		CacheEnabled:        true,
		TranslatorCacheSize: dbconfig.MaxTranslatorCacheSize,
	}
	if cfg, err := dbconfig.Load(); err == nil {
		opts.CacheEnabled = cfg.CacheEnabled
		opts.TranslatorCacheSize = cfg.TranslatorCacheSize
		opts.Config = *cfg
	}
	return opts
}

func withDefaults(opts Options) Options {
	if opts.IDFactory == nil {
		opts.IDFactory = idgen.New
	}
	if opts.TranslatorCacheSize <= 0 || opts.TranslatorCacheSize > dbconfig.MaxTranslatorCacheSize {
		opts.TranslatorCacheSize = dbconfig.MaxTranslatorCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Config.BusyTimeoutMS <= 0 {
		opts.Config.BusyTimeoutMS = 5000
	}
	if opts.Config.JournalMode == "" {
		opts.Config.JournalMode = "WAL"
	}
	return opts
}

// collectionHandle is the type-erased entry stored in Database.collections;
// typeName guards against registering the same name twice with different
// document types (§9 Design Note "Collection cache map").
type collectionHandle struct {
	typeName string
	handle   any
}

// Database owns a backend connection, a lazily populated collection cache,
// and the options new collections inherit. A Database is safe to share
// across goroutines: the backend connection is the single serialisation
// point (§5).
type Database struct {
	mu          sync.RWMutex
	conn        *sql.DB
	owned       bool
	closed      bool
	options     Options
	logger      *slog.Logger
	collections map[string]collectionHandle
}

func newDatabase(conn *sql.DB, owned bool, opts Options) *Database {
	opts = withDefaults(opts)
	return &Database{
		conn:        conn,
		owned:       owned,
		options:     opts,
		logger:      opts.Logger,
		collections: make(map[string]collectionHandle),
	}
}

// Open establishes a new, owned connection to the SQLite file at path. The
// connection is closed by [Database.Close].
func Open(ctx context.Context, path string, opts Options) (*Database, error) {
	opts = withDefaults(opts)
	conn, err := sqlitestore.Open(ctx, path, opts.Config, opts.Logger)
	if err != nil {
		return nil, ConnectionErr("failed to open database", err)
	}
	return newDatabase(conn, true, opts), nil
}

// InMemory opens a new, owned, ephemeral database that exists only for the
// lifetime of the returned handle.
func InMemory(ctx context.Context, opts Options) (*Database, error) {
	opts = withDefaults(opts)
	conn, err := sqlitestore.OpenInMemory(ctx, opts.Config, opts.Logger)
	if err != nil {
		return nil, ConnectionErr("failed to open in-memory database", err)
	}
	return newDatabase(conn, true, opts), nil
}

// FromConnection adopts an externally owned *sql.DB. [Database.Close] does
// not close an adopted connection; the caller retains ownership.
func FromConnection(conn *sql.DB, opts Options) *Database {
	return newDatabase(conn, false, opts)
}

// Close idempotently releases the database. An owned connection is closed;
// an adopted one ([FromConnection]) is left open for its original owner.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.owned {
		if err := d.conn.Close(); err != nil {
			return ConnectionErr("failed to close database", err)
		}
	}
	return nil
}

// checkOpen returns InvalidOperation if the database has been closed.
func (d *Database) checkOpen() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return InvalidOperationErr("database is closed")
	}
	return nil
}
