// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb

import (
	"context"

	"github.com/g5becks/fractaldb/internal/ctxutil"
	"github.com/g5becks/fractaldb/pkg/slice"
	"github.com/g5becks/fractaldb/query"
)

// InsertManyResult reports the outcome of [Collection.InsertMany].
type InsertManyResult[T any] struct {
	// Documents holds every document successfully inserted, in input
	// order.
	Documents []Document[T]
	// InsertedCount is len(Documents).
	InsertedCount int
	// Errors holds one entry per failed item when ordered is false and the
	// failure was a UniqueConstraint violation (the only failure kind an
	// unordered batch tolerates without aborting; see Open Question
	// resolution in DESIGN.md).
	Errors []error
}

// UpdateResult reports the outcome of [Collection.UpdateMany].
type UpdateResult struct {
	Matched  int
	Modified int
}

// DeleteResult reports the outcome of [Collection.DeleteMany].
type DeleteResult struct {
	Deleted int64
}

// InsertMany inserts every element of docs inside a single transaction
// (§4.3.3). If ordered is true, the first failure of any kind aborts the
// whole batch and rolls it back entirely. If ordered is false, a
// UniqueConstraint failure is recorded in the result and the batch
// continues with the next item; any other kind of failure still aborts
// the whole batch, since it signals a condition (a closed database, a
// malformed query, a cancelled context) that retrying item-by-item cannot
// route around.
func (c *Collection[T]) InsertMany(ctx context.Context, docs []T, ordered bool) (*InsertManyResult[T], error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}

	return Execute(ctx, c.db, func(txCtx context.Context) (*InsertManyResult[T], error) {
		res := &InsertManyResult[T]{}
		for _, data := range docs {
			if err := txCtx.Err(); err != nil {
				return nil, AbortedErr(err.Error())
			}

			doc, err := c.InsertOne(txCtx, data)
			if err != nil {
				if !ordered && Is(err, KindUniqueConstraint) {
					res.Errors = append(res.Errors, err)
					continue
				}
				return nil, err
			}

			res.Documents = append(res.Documents, *doc)
			res.InsertedCount++
		}

		ids := slice.Map(res.Documents, func(d Document[T]) string { return d.ID })
		ctxutil.LoggerFrom(txCtx).Debug("insert_many committed", "collection", c.name, "ids", ids, "failed", len(res.Errors))

		return res, nil
	})
}

// UpdateMany applies updateFn to every document matching q, inside a
// single transaction (§4.3.3). The matching id set is snapshotted before
// any update runs, so updates that change a document's indexed fields
// cannot cause it to be visited twice or skipped.
func (c *Collection[T]) UpdateMany(ctx context.Context, q query.Query, updateFn func(T) T) (*UpdateResult, error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}

	return Execute(ctx, c.db, func(txCtx context.Context) (*UpdateResult, error) {
		ids, err := c.matchingIDs(txCtx, q)
		if err != nil {
			return nil, err
		}

		res := &UpdateResult{Matched: len(ids)}
		for _, id := range ids {
			if _, err := c.UpdateByID(txCtx, id, updateFn); err != nil {
				return nil, err
			}
			res.Modified++
		}
		return res, nil
	})
}

// DeleteMany deletes every document matching q in a single statement.
func (c *Collection[T]) DeleteMany(ctx context.Context, q query.Query) (*DeleteResult, error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}

	where, err := c.translator.Where(c.schema, q)
	if err != nil {
		return nil, QueryErr(err.Error(), "", nil, err)
	}

	sqlText := "DELETE FROM " + c.name + " WHERE " + where.SQL
	result, err := c.executor(ctx).ExecContext(ctx, sqlText, where.Params...)
	if err != nil {
		return nil, mapBackendError(err, sqlText, where.Params)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, QueryErr("failed to read affected row count", sqlText, where.Params, err)
	}
	return &DeleteResult{Deleted: n}, nil
}
