// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb

import (
	"context"
	"fmt"

	"github.com/g5becks/fractaldb/internal/codec"
	"github.com/g5becks/fractaldb/internal/ctxutil"
	"github.com/g5becks/fractaldb/internal/idgen"
	"github.com/g5becks/fractaldb/internal/sqlitestore"
	"github.com/g5becks/fractaldb/internal/translate"
	"github.com/g5becks/fractaldb/retry"
	"github.com/g5becks/fractaldb/schema"
)

// Collection is a typed handle onto one backend table, bound to a
// [schema.Schema] that describes how its documents are indexed and
// validated (§4.3).
type Collection[T any] struct {
	name        string
	schema      schema.Schema[T]
	db          *Database
	translator  *translate.Translator
	codec       codec.Codec
	idFactory   idgen.Factory
	retryPolicy *retry.Policy
}

// Name returns the collection's backend table name.
func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) executor(ctx context.Context) sqlitestore.Executor {
	return executorFrom(ctx, c.db)
}

// Validate runs the schema's validator, if any, mapping a failure to a
// KindValidation error.
func (c *Collection[T]) Validate(data T) error {
	if c.schema.Validate == nil {
		return nil
	}
	if err := c.schema.Validate(data); err != nil {
		return Validation("", err.Error())
	}
	return nil
}

// WithRetry runs fn under the retry policy resolved from policy
// (operation-level), the collection's own policy, and the database's, in
// that precedence order (§5).
func (c *Collection[T]) WithRetry(ctx context.Context, policy *retry.Policy, fn func(context.Context) error) error {
	resolved := retry.Resolve(policy, c.retryPolicy, c.db.options.RetryPolicy)
	return retry.Do(ctx, resolved, fn)
}

// Drop removes the collection's backing table and purges its translator
// cache (§4.3.5). The handle is also removed from the database's
// collection cache, so a subsequent [CollectionFor] call for the same name
// materialises a fresh, empty table.
func (c *Collection[T]) Drop(ctx context.Context) error {
	if err := c.db.checkOpen(); err != nil {
		return err
	}
	sqlText := fmt.Sprintf("DROP TABLE IF EXISTS %s", c.name)
	if _, err := c.executor(ctx).ExecContext(ctx, sqlText); err != nil {
		return mapBackendError(err, sqlText, nil)
	}
	c.translator.Purge()

	c.db.mu.Lock()
	delete(c.db.collections, c.name)
	c.db.mu.Unlock()

	return nil
}

// CollectionFor returns the collection registered under name, creating and
// materialising it on first use. A second call for the same name with a
// different document type T returns an InvalidOperation error instead of
// silently aliasing two incompatible types onto one table (§9 Design Note
// "Collection cache map"). This is a standalone function, not a method on
// *Database, because Go disallows methods carrying their own type
// parameters.
func CollectionFor[T any](ctx context.Context, db *Database, name string, s schema.Schema[T]) (*Collection[T], error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}

	typeName := fmt.Sprintf("%T", *new(T))

	db.mu.Lock()
	defer db.mu.Unlock()

	if existing, ok := db.collections[name]; ok {
		if existing.typeName != typeName {
			return nil, InvalidOperationErr(fmt.Sprintf(
				"collection %q is already registered for type %s, requested %s", name, existing.typeName, typeName))
		}
		return existing.handle.(*Collection[T]), nil
	}

	if err := s.ValidateDefinition(); err != nil {
		return nil, Validation("", err.Error())
	}

	ddl, err := schema.Build(name, s)
	if err != nil {
		return nil, Validation("", err.Error())
	}

	if _, err := db.conn.ExecContext(ctx, ddl.CreateTable); err != nil {
		return nil, ConnectionErr("failed to materialise collection table", err)
	}
	for _, stmt := range ddl.CreateIndexes {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return nil, ConnectionErr("failed to materialise collection index", err)
		}
	}

	col := &Collection[T]{
		name:        name,
		schema:      s,
		db:          db,
		translator:  translate.New(db.options.TranslatorCacheSize, db.options.CacheEnabled),
		codec:       codec.JSON{},
		idFactory:   db.options.IDFactory,
		retryPolicy: db.options.RetryPolicy,
	}
	db.collections[name] = collectionHandle{typeName: typeName, handle: col}

	ctxutil.LoggerFrom(ctx).Info("collection materialised", "name", name, "type", typeName)
	return col, nil
}
