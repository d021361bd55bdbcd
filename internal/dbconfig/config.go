// Copyright (c) 2026 FractalDB Authors. All rights reserved.

/*
Package dbconfig loads environment-driven defaults for the pieces of
[Database Options] that a deployment (or a test harness) reasonably wants to
tune without recompiling: SQLite busy-timeout, the translator cache size,
and whether the collection cache is enabled.

Usage:

	cfg, err := dbconfig.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: once loaded, configuration is read-only.
  - Optional: every field has a sane default; no variable is required.
  - Zero hidden state: no package-level globals hold configuration.
*/
package dbconfig

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds environment-driven defaults for opening a [Database].
type Config struct {
	// BusyTimeoutMS is the SQLite busy_timeout pragma, in milliseconds.
	BusyTimeoutMS int `env:"FRACTALDB_BUSY_TIMEOUT_MS" envDefault:"5000"`

	// CacheEnabled is the value fractaldb.DefaultOptions uses for
	// Options.CacheEnabled.
	CacheEnabled bool `env:"FRACTALDB_CACHE_ENABLED" envDefault:"true"`

	// TranslatorCacheSize bounds the per-collection translator LRU (§4.1);
	// the spec caps this at 500 and Load enforces that ceiling.
	TranslatorCacheSize int `env:"FRACTALDB_TRANSLATOR_CACHE_SIZE" envDefault:"500"`

	// JournalMode is the SQLite journal_mode pragma ("WAL" is recommended
	// for concurrent readers).
	JournalMode string `env:"FRACTALDB_JOURNAL_MODE" envDefault:"WAL"`
}

// MaxTranslatorCacheSize is the hard ceiling from spec §4.1; Load clamps to it.
const MaxTranslatorCacheSize = 500

// Load parses environment variables into a [Config], applying defaults for
// anything unset and clamping TranslatorCacheSize to [MaxTranslatorCacheSize].
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("dbconfig: failed to parse environment variables: %w", err)
	}

	if cfg.TranslatorCacheSize <= 0 || cfg.TranslatorCacheSize > MaxTranslatorCacheSize {
		cfg.TranslatorCacheSize = MaxTranslatorCacheSize
	}

	return cfg, nil
}
