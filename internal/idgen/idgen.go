// Copyright (c) 2026 FractalDB Authors. All rights reserved.

// Package idgen generates the time-sortable 128-bit document identifiers
// used as the primary key of every collection.
//
// # Why UUIDv7?
//
// A UUIDv7 embeds a 48-bit millisecond timestamp in its high bits, so
// lexicographic string ordering of freshly generated ids tracks insertion
// order. That keeps the `_id TEXT PRIMARY KEY` index append-mostly instead
// of fragmenting the way random UUIDv4 ids would.
package idgen

import "github.com/google/uuid"

// New generates a new time-sortable document id, rendered as its canonical
// 36-character string form.
//
// It panics only if the OS random source is unavailable, which is treated
// as an unrecoverable system-level failure rather than a normal error.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("idgen: failed to generate id: " + err.Error())
	}
	return id.String()
}

// Factory is the shape of a pluggable id generator, matching
// [Database Options].IDFactory.
type Factory func() string
