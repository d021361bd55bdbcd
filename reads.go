// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/g5becks/fractaldb/query"
)

// selectClause is the standard read-path projection: the metadata columns
// plus the body re-expanded from its binary JSON1 storage form back to
// text via json(...) (§6.1).
const selectClause = "_id, json(body) AS body, created_at, updated_at"

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (c *Collection[T]) scanDocument(sc scanner, opts query.QueryOptions) (Document[T], error) {
	var (
		id                   string
		body                 string
		createdAt, updatedAt int64
	)
	if err := sc.Scan(&id, &body, &createdAt, &updatedAt); err != nil {
		return Document[T]{}, err
	}

	projected, err := applyProjection([]byte(body), opts.Project, opts.Omit)
	if err != nil {
		return Document[T]{}, SerializationErr("", "failed to apply field projection", err)
	}

	var data T
	if err := c.codec.Decode(projected, &data); err != nil {
		return Document[T]{}, SerializationErr("", "failed to decode document body", err)
	}
	return Document[T]{ID: id, Data: data, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}

// FindByID returns the document with the given id, or nil if none exists.
func (c *Collection[T]) FindByID(ctx context.Context, id string) (*Document[T], error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}
	sqlText := fmt.Sprintf("SELECT %s FROM %s WHERE _id = @id", selectClause, c.name)
	row := c.executor(ctx).QueryRowContext(ctx, sqlText, sql.Named("id", id))

	doc, err := c.scanDocument(row, query.NewQueryOptions())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapBackendError(err, sqlText, []any{id})
	}
	return &doc, nil
}

// Find returns every document matching q, ordered, paginated, and
// projected per opts (§4.3.1).
func (c *Collection[T]) Find(ctx context.Context, q query.Query, opts query.QueryOptions) ([]Document[T], error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, InvalidOperationErr(err.Error())
	}

	result, err := c.translator.Translate(c.schema, q, opts)
	if err != nil {
		return nil, QueryErr(err.Error(), "", nil, err)
	}

	sqlText := fmt.Sprintf("SELECT %s FROM %s WHERE %s", selectClause, c.name, result.SQL)
	rows, err := c.executor(ctx).QueryContext(ctx, sqlText, result.Params...)
	if err != nil {
		return nil, mapBackendError(err, sqlText, result.Params)
	}
	defer rows.Close()

	var docs []Document[T]
	for rows.Next() {
		doc, err := c.scanDocument(rows, opts)
		if err != nil {
			return nil, mapBackendError(err, sqlText, result.Params)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapBackendError(err, sqlText, result.Params)
	}
	return docs, nil
}

// FindOne returns the first document matching q under opts, or nil if
// none does.
func (c *Collection[T]) FindOne(ctx context.Context, q query.Query, opts query.QueryOptions) (*Document[T], error) {
	docs, err := c.Find(ctx, q, opts.WithLimit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

// Count returns the exact number of documents matching q.
func (c *Collection[T]) Count(ctx context.Context, q query.Query) (int64, error) {
	if err := c.db.checkOpen(); err != nil {
		return 0, err
	}
	where, err := c.translator.Where(c.schema, q)
	if err != nil {
		return 0, QueryErr(err.Error(), "", nil, err)
	}
	sqlText := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", c.name, where.SQL)

	var n int64
	if err := c.executor(ctx).QueryRowContext(ctx, sqlText, where.Params...).Scan(&n); err != nil {
		return 0, mapBackendError(err, sqlText, where.Params)
	}
	return n, nil
}

// EstimatedCount returns the total number of documents in the collection,
// ignoring any filter; it is a plain unconditional COUNT(*) rather than a
// SQLite-internal page estimate, since no such estimate is exposed through
// database/sql (§4.3.1).
func (c *Collection[T]) EstimatedCount(ctx context.Context) (int64, error) {
	if err := c.db.checkOpen(); err != nil {
		return 0, err
	}
	sqlText := fmt.Sprintf("SELECT COUNT(*) FROM %s", c.name)

	var n int64
	if err := c.executor(ctx).QueryRowContext(ctx, sqlText).Scan(&n); err != nil {
		return 0, mapBackendError(err, sqlText, nil)
	}
	return n, nil
}

// Distinct returns the distinct values of field across documents matching
// q.
func (c *Collection[T]) Distinct(ctx context.Context, field string, q query.Query) ([]query.Value, error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}
	where, err := c.translator.Where(c.schema, q)
	if err != nil {
		return nil, QueryErr(err.Error(), "", nil, err)
	}

	resolved := c.schema.Resolve(field)
	sqlText := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s", resolved, c.name, where.SQL)
	rows, err := c.executor(ctx).QueryContext(ctx, sqlText, where.Params...)
	if err != nil {
		return nil, mapBackendError(err, sqlText, where.Params)
	}
	defer rows.Close()

	var values []query.Value
	for rows.Next() {
		var raw any
		if err := rows.Scan(&raw); err != nil {
			return nil, mapBackendError(err, sqlText, where.Params)
		}
		values = append(values, query.Of(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, mapBackendError(err, sqlText, where.Params)
	}
	return values, nil
}

// Exists reports whether any document matches q.
func (c *Collection[T]) Exists(ctx context.Context, q query.Query) (bool, error) {
	if err := c.db.checkOpen(); err != nil {
		return false, err
	}
	where, err := c.translator.Where(c.schema, q)
	if err != nil {
		return false, QueryErr(err.Error(), "", nil, err)
	}
	sqlText := fmt.Sprintf("SELECT 1 FROM %s WHERE %s LIMIT 1", c.name, where.SQL)

	var found int
	err = c.executor(ctx).QueryRowContext(ctx, sqlText, where.Params...).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, mapBackendError(err, sqlText, where.Params)
	}
	return true, nil
}

// matchingIDs returns the ids of every document matching q, used by
// UpdateMany to snapshot a consistent row set before mutating it
// (§4.3.3).
func (c *Collection[T]) matchingIDs(ctx context.Context, q query.Query) ([]string, error) {
	where, err := c.translator.Where(c.schema, q)
	if err != nil {
		return nil, QueryErr(err.Error(), "", nil, err)
	}
	sqlText := fmt.Sprintf("SELECT _id FROM %s WHERE %s", c.name, where.SQL)
	rows, err := c.executor(ctx).QueryContext(ctx, sqlText, where.Params...)
	if err != nil {
		return nil, mapBackendError(err, sqlText, where.Params)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapBackendError(err, sqlText, where.Params)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
