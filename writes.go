// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/g5becks/fractaldb/internal/sqlitestore"
	"github.com/g5becks/fractaldb/query"
)

// InsertOne validates data, mints a new id via the collection's id
// factory, and persists it with created_at and updated_at set equal
// (§4.3.2). FractalDB always assigns the id itself: unlike a document
// database keyed by an arbitrary caller-supplied value, a generic T gives
// no portable way to read an embedded id field back out, so the id
// factory is the sole source of identity (see DESIGN.md).
func (c *Collection[T]) InsertOne(ctx context.Context, data T) (*Document[T], error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}
	if err := c.Validate(data); err != nil {
		return nil, err
	}

	id := c.idFactory()
	if id == "" {
		return nil, Validation("id", "id factory returned an empty id")
	}
	now := time.Now().UnixMilli()

	body, err := c.codec.Encode(data)
	if err != nil {
		return nil, SerializationErr("", "failed to encode document", err)
	}

	sqlText := fmt.Sprintf(
		"INSERT INTO %s (_id, body, created_at, updated_at) VALUES (@id, jsonb(@body), @created, @updated)", c.name)
	params := []any{
		sql.Named("id", id),
		sql.Named("body", string(body)),
		sql.Named("created", now),
		sql.Named("updated", now),
	}

	if _, err := c.executor(ctx).ExecContext(ctx, sqlText, params...); err != nil {
		wrapped := sqlitestore.Wrap(err, sqlText, nil)
		if de := sqlitestore.As(wrapped); de != nil && de.Kind == sqlitestore.KindUniqueConstraint {
			return nil, c.toUniqueConstraintErr(de, body)
		}
		return nil, mapBackendError(err, sqlText, nil)
	}

	doc := newDocument(id, data, now)
	return &doc, nil
}

// UpdateByID applies updateFn to the existing document's data and
// persists the result, unconditionally refreshing updated_at (§9
// Supplemented Feature: updated_at is always refreshed by a write,
// regardless of whether the new value differs from the old one).
// NotFound is returned if id does not exist.
func (c *Collection[T]) UpdateByID(ctx context.Context, id string, updateFn func(T) T) (*Document[T], error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}

	existing, err := c.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, NotFoundErr(id)
	}

	updated := updateFn(existing.Data)
	if err := c.Validate(updated); err != nil {
		return nil, err
	}

	body, err := c.codec.Encode(updated)
	if err != nil {
		return nil, SerializationErr("", "failed to encode document", err)
	}

	now := time.Now().UnixMilli()
	sqlText := fmt.Sprintf("UPDATE %s SET body = jsonb(@body), updated_at = @updated WHERE _id = @id", c.name)
	params := []any{sql.Named("body", string(body)), sql.Named("updated", now), sql.Named("id", id)}

	if _, err := c.executor(ctx).ExecContext(ctx, sqlText, params...); err != nil {
		wrapped := sqlitestore.Wrap(err, sqlText, nil)
		if de := sqlitestore.As(wrapped); de != nil && de.Kind == sqlitestore.KindUniqueConstraint {
			return nil, c.toUniqueConstraintErr(de, body)
		}
		return nil, mapBackendError(err, sqlText, nil)
	}

	doc := Document[T]{ID: id, Data: updated, CreatedAt: existing.CreatedAt, UpdatedAt: now}
	return &doc, nil
}

// UpdateOne finds the first document matching q under opts and applies
// updateFn to it, or returns nil if nothing matches.
func (c *Collection[T]) UpdateOne(ctx context.Context, q query.Query, opts query.QueryOptions, updateFn func(T) T) (*Document[T], error) {
	doc, err := c.FindOne(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return c.UpdateByID(ctx, doc.ID, updateFn)
}

// ReplaceOne overwrites id's document body wholesale with data, preserving
// its id and created_at and refreshing updated_at. NotFound is returned
// if id does not exist.
func (c *Collection[T]) ReplaceOne(ctx context.Context, id string, data T) (*Document[T], error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}
	if err := c.Validate(data); err != nil {
		return nil, err
	}

	existing, err := c.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, NotFoundErr(id)
	}

	body, err := c.codec.Encode(data)
	if err != nil {
		return nil, SerializationErr("", "failed to encode document", err)
	}

	now := time.Now().UnixMilli()
	sqlText := fmt.Sprintf("UPDATE %s SET body = jsonb(@body), updated_at = @updated WHERE _id = @id", c.name)
	params := []any{sql.Named("body", string(body)), sql.Named("updated", now), sql.Named("id", id)}

	if _, err := c.executor(ctx).ExecContext(ctx, sqlText, params...); err != nil {
		wrapped := sqlitestore.Wrap(err, sqlText, nil)
		if de := sqlitestore.As(wrapped); de != nil && de.Kind == sqlitestore.KindUniqueConstraint {
			return nil, c.toUniqueConstraintErr(de, body)
		}
		return nil, mapBackendError(err, sqlText, nil)
	}

	doc := Document[T]{ID: id, Data: data, CreatedAt: existing.CreatedAt, UpdatedAt: now}
	return &doc, nil
}

// DeleteByID deletes the document with the given id, returning the number
// of rows removed (0 or 1).
func (c *Collection[T]) DeleteByID(ctx context.Context, id string) (int64, error) {
	if err := c.db.checkOpen(); err != nil {
		return 0, err
	}
	sqlText := fmt.Sprintf("DELETE FROM %s WHERE _id = @id", c.name)
	result, err := c.executor(ctx).ExecContext(ctx, sqlText, sql.Named("id", id))
	if err != nil {
		return 0, mapBackendError(err, sqlText, []any{id})
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, QueryErr("failed to read affected row count", sqlText, nil, err)
	}
	return n, nil
}

// DeleteOne deletes the first document matching q, returning the number
// of rows removed (0 or 1).
func (c *Collection[T]) DeleteOne(ctx context.Context, q query.Query) (int64, error) {
	doc, err := c.FindOne(ctx, q, query.NewQueryOptions())
	if err != nil {
		return 0, err
	}
	if doc == nil {
		return 0, nil
	}
	return c.DeleteByID(ctx, doc.ID)
}
