// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb

import (
	"fmt"

	"github.com/g5becks/fractaldb/internal/sqlitestore"
)

// mapBackendError classifies a raw backend error into the stable
// FractalError taxonomy of §7, attaching the offending SQL and bound
// parameters for diagnostics. Callers that already know an error is a
// unique-constraint violation on a write path should prefer
// [Collection.toUniqueConstraintErr], which can additionally recover the
// offending value from the document body that was being written.
func mapBackendError(err error, sqlText string, params []any) error {
	if err == nil {
		return nil
	}
	wrapped := sqlitestore.Wrap(err, sqlText, params)
	de := sqlitestore.As(wrapped)
	if de == nil {
		return QueryErr(err.Error(), sqlText, params, err)
	}
	switch de.Kind {
	case sqlitestore.KindUniqueConstraint:
		return UniqueConstraintErr(de.Field, de.Value)
	case sqlitestore.KindNotFound:
		return NotFoundErr("")
	default:
		return QueryErr("backend operation failed", sqlText, params, de.Cause)
	}
}

// toUniqueConstraintErr builds a UniqueConstraint error for de, recovering
// the offending value from the document body that was about to be
// written; SQLite's own error message only names the violated column, not
// the value.
func (c *Collection[T]) toUniqueConstraintErr(de *sqlitestore.DBError, body []byte) *FractalError {
	value := ""
	if v, err := c.codec.DecodeValuePath(body, "$."+de.Field); err == nil && v != nil {
		value = fmt.Sprint(v)
	}
	return UniqueConstraintErr(de.Field, value)
}
