// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package sqlitestore_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g5becks/fractaldb/internal/sqlitestore"
)

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, sqlitestore.Wrap(nil, "", nil))
}

func TestWrap_NoRows(t *testing.T) {
	err := sqlitestore.Wrap(sql.ErrNoRows, "SELECT 1", nil)
	require.True(t, sqlitestore.IsKind(err, sqlitestore.KindNotFound))
}

func TestWrap_UniqueConstraintParsesField(t *testing.T) {
	cause := errors.New(`constraint failed: UNIQUE constraint failed: users._email (2067)`)
	err := sqlitestore.Wrap(cause, "INSERT ...", nil)

	de := sqlitestore.As(err)
	require.NotNil(t, de)
	assert.Equal(t, sqlitestore.KindUniqueConstraint, de.Kind)
	assert.Equal(t, "email", de.Field)
}

func TestWrap_UniqueConstraintWithoutCodeSuffix(t *testing.T) {
	cause := errors.New(`UNIQUE constraint failed: users._email`)
	err := sqlitestore.Wrap(cause, "INSERT ...", nil)

	de := sqlitestore.As(err)
	require.NotNil(t, de)
	assert.Equal(t, "email", de.Field)
}

func TestWrap_OtherErrorsAreKindOther(t *testing.T) {
	err := sqlitestore.Wrap(errors.New("disk I/O error"), "SELECT 1", nil)
	de := sqlitestore.As(err)
	require.NotNil(t, de)
	assert.Equal(t, sqlitestore.KindOther, de.Kind)
}

func TestWrap_PreservesSQLAndParams(t *testing.T) {
	err := sqlitestore.Wrap(errors.New("boom"), "SELECT * FROM t WHERE x = @p0", []any{1})
	de := sqlitestore.As(err)
	require.NotNil(t, de)
	assert.Equal(t, "SELECT * FROM t WHERE x = @p0", de.SQL)
	assert.Equal(t, []any{1}, de.Params)
}
