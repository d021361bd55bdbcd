// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g5becks/fractaldb/schema"
)

type user struct {
	Name  string
	Age   int
	Email string
}

func userSchema() schema.Schema[user] {
	return schema.New[user]().
		WithField(schema.FieldDef{Name: "name", SQLType: schema.Text, Indexed: true}).
		WithField(schema.FieldDef{Name: "age", SQLType: schema.Integer, Indexed: true}).
		WithField(schema.FieldDef{Name: "email", SQLType: schema.Text, Unique: true}).
		WithIndex(schema.CompoundIndex{Name: "idx_users_name_age", Fields: []string{"name", "age"}})
}

func TestBuild_BaseColumnsAlwaysPresent(t *testing.T) {
	ddl, err := schema.Build("users", userSchema())
	require.NoError(t, err)
	assert.Contains(t, ddl.CreateTable, "_id TEXT PRIMARY KEY")
	assert.Contains(t, ddl.CreateTable, "body BLOB NOT NULL")
	assert.Contains(t, ddl.CreateTable, "created_at INTEGER NOT NULL")
	assert.Contains(t, ddl.CreateTable, "updated_at INTEGER NOT NULL")
}

func TestBuild_GeneratedColumnForIndexedField(t *testing.T) {
	ddl, err := schema.Build("users", userSchema())
	require.NoError(t, err)
	assert.Contains(t, ddl.CreateTable, "_age INTEGER GENERATED ALWAYS AS (json_extract(body, '$.age')) VIRTUAL")
}

func TestBuild_UniqueFieldGetsGeneratedColumnAndIndex(t *testing.T) {
	ddl, err := schema.Build("users", userSchema())
	require.NoError(t, err)
	assert.Contains(t, ddl.CreateTable, "_email TEXT GENERATED ALWAYS AS (json_extract(body, '$.email')) VIRTUAL")
	assert.Contains(t, ddl.CreateIndexes, "CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(_email)")
}

func TestBuild_SingleColumnIndexes(t *testing.T) {
	ddl, err := schema.Build("users", userSchema())
	require.NoError(t, err)
	assert.Contains(t, ddl.CreateIndexes, "CREATE INDEX IF NOT EXISTS idx_users_name ON users(_name)")
	assert.Contains(t, ddl.CreateIndexes, "CREATE INDEX IF NOT EXISTS idx_users_age ON users(_age)")
}

func TestBuild_CompoundIndex(t *testing.T) {
	ddl, err := schema.Build("users", userSchema())
	require.NoError(t, err)
	assert.Contains(t, ddl.CreateIndexes, "CREATE INDEX IF NOT EXISTS idx_users_name_age ON users(_name, _age)")
}

func TestBuild_RejectsCompoundIndexOnNonIndexedField(t *testing.T) {
	s := schema.New[user]().
		WithField(schema.FieldDef{Name: "name", SQLType: schema.Text}).
		WithIndex(schema.CompoundIndex{Name: "bad", Fields: []string{"name"}})

	_, err := schema.Build("users", s)
	require.Error(t, err)
}

func TestBuild_RejectsCompoundIndexOnUnknownField(t *testing.T) {
	s := schema.New[user]().
		WithIndex(schema.CompoundIndex{Name: "bad", Fields: []string{"ghost"}})

	_, err := schema.Build("users", s)
	require.Error(t, err)
}

func TestResolve_MetadataColumns(t *testing.T) {
	s := userSchema()
	assert.Equal(t, "_id", s.Resolve("id"))
	assert.Equal(t, "created_at", s.Resolve("created_at"))
	assert.Equal(t, "updated_at", s.Resolve("updated_at"))
}

func TestResolve_IndexedFieldUsesGeneratedColumn(t *testing.T) {
	s := userSchema()
	assert.Equal(t, "_age", s.Resolve("age"))
}

func TestResolve_NonIndexedFieldUsesJSONExtract(t *testing.T) {
	s := schema.New[user]().WithField(schema.FieldDef{Name: "bio", SQLType: schema.Text})
	assert.Equal(t, "json_extract(body, '$.bio')", s.Resolve("bio"))
}

func TestResolve_UnknownFieldIsLenient(t *testing.T) {
	s := userSchema()
	assert.Equal(t, "json_extract(body, '$.ghost')", s.Resolve("ghost"))
}

func TestResolve_CustomPath(t *testing.T) {
	s := schema.New[user]().WithField(schema.FieldDef{Name: "city", Path: "$.address.city", SQLType: schema.Text})
	assert.Equal(t, "json_extract(body, '$.address.city')", s.Resolve("city"))
}
