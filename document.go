// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb

// Document wraps a typed value with the metadata every collection
// maintains for it: a time-sortable id and the creation/modification
// timestamps. id is immutable once assigned; updated_at is only ever
// refreshed by an explicit write operation, never by a read (§3).
type Document[T any] struct {
	ID        string
	Data      T
	CreatedAt int64
	UpdatedAt int64
}

// newDocument constructs a freshly inserted document, where created_at and
// updated_at start out equal.
func newDocument[T any](id string, data T, now int64) Document[T] {
	return Document[T]{ID: id, Data: data, CreatedAt: now, UpdatedAt: now}
}
