// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/g5becks/fractaldb/internal/ctxutil"
	"github.com/g5becks/fractaldb/internal/sqlitestore"
)

// txKey binds the active *sql.Tx into a context.Context, letting
// Collection operations transparently run inside a transaction without a
// bespoke Txn wrapper type (§4.4).
type txKey struct{}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// executorFrom returns the active transaction's Executor if ctx carries
// one, otherwise db's raw connection.
func executorFrom(ctx context.Context, db *Database) sqlitestore.Executor {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db.conn
}

// Execute runs fn inside a new transaction bound to ctx, committing on a
// nil error and rolling back otherwise (§4.4). Go has no generic methods
// of their own, so this is a standalone function rather than a method on
// *Database; it is the combinator form of the spec's "fn: &Txn ->
// Result<R,E>" pattern. If ctx already carries a transaction, fn runs
// inside it, and commit or rollback is left to the outer Execute.
func Execute[R any](ctx context.Context, db *Database, fn func(ctx context.Context) (R, error)) (R, error) {
	var zero R

	if err := db.checkOpen(); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, AbortedErr(err.Error())
	}
	if _, ok := txFromContext(ctx); ok {
		return runTxBody(ctx, fn)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return zero, TransactionErr("begin", "failed to begin transaction", err)
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)

	result, ferr := runTxBody(txCtx, fn)
	if ferr != nil {
		if rerr := tx.Rollback(); rerr != nil && rerr != sql.ErrTxDone {
			ctxutil.LoggerFrom(ctx).Error("transaction rollback failed", "error", rerr)
		}
		return zero, ferr
	}

	if err := tx.Commit(); err != nil {
		return zero, TransactionErr("commit", "failed to commit transaction", err)
	}
	return result, nil
}

// runTxBody invokes fn, converting a panic into a KindTransaction error so
// Execute can still roll back instead of propagating the panic past the
// transaction boundary.
func runTxBody[R any](ctx context.Context, fn func(context.Context) (R, error)) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero R
			result = zero
			err = TransactionErr("execute", fmt.Sprintf("panic: %v", r), nil)
		}
	}()
	return fn(ctx)
}

// ExecuteInfallible runs fn, which cannot itself fail, inside a
// transaction like [Execute]. Only a panic inside fn triggers a rollback.
func ExecuteInfallible[R any](ctx context.Context, db *Database, fn func(ctx context.Context) R) (R, error) {
	return Execute(ctx, db, func(ctx context.Context) (R, error) {
		return fn(ctx), nil
	})
}
