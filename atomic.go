// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb

import (
	"context"

	"github.com/g5becks/fractaldb/query"
)

// ReturnWhen selects which state of a document a find-and-modify
// operation returns: its state immediately before the mutation, or
// immediately after.
type ReturnWhen int

const (
	Before ReturnWhen = iota
	After
)

// FindOneAndModifyOptions configures [Collection.FindOneAndUpdate] and
// [Collection.FindOneAndReplace] (§4.3.4).
type FindOneAndModifyOptions struct {
	// Sort breaks ties among multiple matches; the first match under this
	// order is the one modified.
	Sort []query.SortKey
	// Return selects whether the pre- or post-mutation document is
	// returned.
	Return ReturnWhen
	// Upsert inserts a new document from the update/replacement when
	// nothing matches q, instead of returning nil.
	Upsert bool
}

func (o FindOneAndModifyOptions) findOptions() query.QueryOptions {
	opts := query.NewQueryOptions()
	for _, s := range o.Sort {
		opts = opts.WithSort(s.Field, s.Direction)
	}
	return opts
}

// FindOneAndDelete atomically finds the first document matching q (under
// sort, to break ties among multiple matches) and deletes it, returning
// the document as it was immediately before deletion. Returns nil if
// nothing matches.
func (c *Collection[T]) FindOneAndDelete(ctx context.Context, q query.Query, sort []query.SortKey) (*Document[T], error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}

	return Execute(ctx, c.db, func(txCtx context.Context) (*Document[T], error) {
		opts := FindOneAndModifyOptions{Sort: sort}.findOptions()
		doc, err := c.FindOne(txCtx, q, opts)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, nil
		}
		if _, err := c.DeleteByID(txCtx, doc.ID); err != nil {
			return nil, err
		}
		return doc, nil
	})
}

// FindOneAndUpdate atomically finds the first document matching q and
// applies updateFn to it, returning either its before- or after-mutation
// state per opts.Return. If nothing matches and opts.Upsert is true,
// updateFn is applied to a zero-value T and the result inserted; otherwise
// nil is returned (§4.3.4).
func (c *Collection[T]) FindOneAndUpdate(ctx context.Context, q query.Query, updateFn func(T) T, opts FindOneAndModifyOptions) (*Document[T], error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}

	return Execute(ctx, c.db, func(txCtx context.Context) (*Document[T], error) {
		before, err := c.FindOne(txCtx, q, opts.findOptions())
		if err != nil {
			return nil, err
		}

		if before == nil {
			if !opts.Upsert {
				return nil, nil
			}
			var zero T
			return c.InsertOne(txCtx, updateFn(zero))
		}

		after, err := c.UpdateByID(txCtx, before.ID, updateFn)
		if err != nil {
			return nil, err
		}
		if opts.Return == Before {
			return before, nil
		}
		return after, nil
	})
}

// FindOneAndReplace atomically finds the first document matching q and
// overwrites it wholesale with data, returning either its before- or
// after-mutation state per opts.Return. If nothing matches and
// opts.Upsert is true, data is inserted as a new document; otherwise nil
// is returned (§4.3.4).
func (c *Collection[T]) FindOneAndReplace(ctx context.Context, q query.Query, data T, opts FindOneAndModifyOptions) (*Document[T], error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}

	return Execute(ctx, c.db, func(txCtx context.Context) (*Document[T], error) {
		before, err := c.FindOne(txCtx, q, opts.findOptions())
		if err != nil {
			return nil, err
		}

		if before == nil {
			if !opts.Upsert {
				return nil, nil
			}
			return c.InsertOne(txCtx, data)
		}

		after, err := c.ReplaceOne(txCtx, before.ID, data)
		if err != nil {
			return nil, err
		}
		if opts.Return == Before {
			return before, nil
		}
		return after, nil
	})
}
