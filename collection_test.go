// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g5becks/fractaldb"
	"github.com/g5becks/fractaldb/query"
	"github.com/g5becks/fractaldb/schema"
)

type user struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	Priority int    `json:"priority"`
}

func userSchema() schema.Schema[user] {
	return schema.New[user]().
		WithField(schema.FieldDef{Name: "age", SQLType: schema.Integer, Indexed: true}).
		WithField(schema.FieldDef{Name: "email", SQLType: schema.Text, Unique: true}).
		WithField(schema.FieldDef{Name: "status", SQLType: schema.Text, Indexed: true}).
		WithField(schema.FieldDef{Name: "priority", SQLType: schema.Integer, Indexed: true})
}

func newTestDB(t *testing.T) *fractaldb.Database {
	t.Helper()
	db, err := fractaldb.InMemory(context.Background(), fractaldb.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestCollection(t *testing.T, db *fractaldb.Database) *fractaldb.Collection[user] {
	t.Helper()
	col, err := fractaldb.CollectionFor(context.Background(), db, "users", userSchema())
	require.NoError(t, err)
	return col
}

// Scenario 1: insert then fetch.
func TestInsertOneThenFindByID(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	doc, err := col.InsertOne(ctx, user{Name: "Alice", Age: 30, Email: "alice@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)

	found, err := col.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Alice", found.Data.Name)
	assert.Equal(t, doc.CreatedAt, found.CreatedAt)
}

func TestFindByID_MissingReturnsNilNotError(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	found, err := col.FindByID(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, found)
}

// Scenario 2: unique violation.
func TestUniqueConstraintViolation(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	_, err := col.InsertOne(ctx, user{Name: "A", Email: "a@b"})
	require.NoError(t, err)

	_, err = col.InsertOne(ctx, user{Name: "B", Email: "a@b"})
	require.Error(t, err)

	fe := fractaldb.As(err)
	require.NotNil(t, fe)
	assert.Equal(t, fractaldb.KindUniqueConstraint, fe.Kind)
	assert.Equal(t, "email", fe.Field)
	assert.Equal(t, "a@b", fe.Value)
}

// Scenario 3: a filter on the indexed "age" field finds the matching
// document; the exact SQL shape (`_age = @p0` vs `json_extract(...)`) is
// pinned by internal/translate's own tests.
func TestIndexedFilterFindsMatchingDocuments(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	_, err := col.InsertOne(ctx, user{Name: "Alice", Age: 30, Email: "alice@x"})
	require.NoError(t, err)
	_, err = col.InsertOne(ctx, user{Name: "Bob", Age: 25, Email: "bob@x"})
	require.NoError(t, err)

	docs, err := col.Find(ctx, query.Field("age").Eq(30).Build(), query.NewQueryOptions())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Alice", docs[0].Data.Name)
}

// Scenario 4: ordered batch rollback.
func TestInsertManyOrderedRollsBackOnUniqueViolation(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	docs := []user{
		{Name: "A", Email: "dup@x"},
		{Name: "B", Email: "dup@x"},
	}

	_, err := col.InsertMany(ctx, docs, true)
	require.Error(t, err)
	assert.True(t, fractaldb.Is(err, fractaldb.KindUniqueConstraint))

	count, err := col.EstimatedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestInsertManyUnorderedAccumulatesUniqueErrors(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	docs := []user{
		{Name: "A", Email: "a@x"},
		{Name: "B", Email: "a@x"},
		{Name: "C", Email: "c@x"},
	}

	result, err := col.InsertMany(ctx, docs, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.InsertedCount)
	assert.Len(t, result.Errors, 1)
	assert.Len(t, result.Documents, 2)
}

// Scenario 5: atomic claim pattern.
func TestAtomicClaimPattern(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	_, err := col.InsertOne(ctx, user{Name: "low", Status: "queued", Priority: 1, Email: "low@x"})
	require.NoError(t, err)
	_, err = col.InsertOne(ctx, user{Name: "high", Status: "queued", Priority: 10, Email: "high@x"})
	require.NoError(t, err)

	claimed, err := col.FindOneAndUpdate(
		ctx,
		query.Field("status").Eq("queued").Build(),
		func(u user) user { u.Status = "claimed"; return u },
		fractaldb.FindOneAndModifyOptions{
			Sort:   []query.SortKey{{Field: "priority", Direction: query.Descending}},
			Return: fractaldb.After,
		},
	)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, "high", claimed.Data.Name)
	assert.Equal(t, "claimed", claimed.Data.Status)

	reread, err := col.FindByID(ctx, claimed.ID)
	require.NoError(t, err)
	assert.Equal(t, "claimed", reread.Data.Status)
}

func TestUpdateByID_RefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	doc, err := col.InsertOne(ctx, user{Name: "A", Age: 1, Email: "a@x"})
	require.NoError(t, err)

	updated, err := col.UpdateByID(ctx, doc.ID, func(u user) user { u.Age = 2; return u })
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Data.Age)
	assert.Equal(t, doc.CreatedAt, updated.CreatedAt)
	assert.GreaterOrEqual(t, updated.UpdatedAt, doc.CreatedAt)
}

func TestUpdateByID_NotFoundReturnsNotFoundError(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	_, err := col.UpdateByID(ctx, "missing", func(u user) user { return u })
	require.Error(t, err)
	assert.True(t, fractaldb.Is(err, fractaldb.KindNotFound))
}

func TestDeleteByID_RemovesDocument(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	doc, err := col.InsertOne(ctx, user{Name: "A", Email: "a@x"})
	require.NoError(t, err)

	n, err := col.DeleteByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := col.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUpdateMany_AppliesToAllMatching(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	_, err := col.InsertOne(ctx, user{Name: "A", Status: "queued", Email: "a@x"})
	require.NoError(t, err)
	_, err = col.InsertOne(ctx, user{Name: "B", Status: "queued", Email: "b@x"})
	require.NoError(t, err)
	_, err = col.InsertOne(ctx, user{Name: "C", Status: "done", Email: "c@x"})
	require.NoError(t, err)

	result, err := col.UpdateMany(ctx, query.Field("status").Eq("queued").Build(), func(u user) user {
		u.Status = "claimed"
		return u
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Matched)
	assert.Equal(t, 2, result.Modified)

	count, err := col.Count(ctx, query.Field("status").Eq("claimed").Build())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDeleteMany_RemovesAllMatching(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	_, err := col.InsertOne(ctx, user{Name: "A", Status: "queued", Email: "a@x"})
	require.NoError(t, err)
	_, err = col.InsertOne(ctx, user{Name: "B", Status: "queued", Email: "b@x"})
	require.NoError(t, err)

	result, err := col.DeleteMany(ctx, query.Field("status").Eq("queued").Build())
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Deleted)

	count, err := col.EstimatedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDistinctAndExists(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	_, err := col.InsertOne(ctx, user{Name: "A", Status: "queued", Email: "a@x"})
	require.NoError(t, err)
	_, err = col.InsertOne(ctx, user{Name: "B", Status: "queued", Email: "b@x"})
	require.NoError(t, err)
	_, err = col.InsertOne(ctx, user{Name: "C", Status: "done", Email: "c@x"})
	require.NoError(t, err)

	values, err := col.Distinct(ctx, "status", query.Empty())
	require.NoError(t, err)
	assert.Len(t, values, 2)

	exists, err := col.Exists(ctx, query.Field("status").Eq("queued").Build())
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = col.Exists(ctx, query.Field("status").Eq("missing").Build())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFindOneAndDelete_RemovesAndReturnsDocument(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	_, err := col.InsertOne(ctx, user{Name: "A", Status: "queued", Priority: 1, Email: "a@x"})
	require.NoError(t, err)

	removed, err := col.FindOneAndDelete(ctx, query.Field("status").Eq("queued").Build(), nil)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, "A", removed.Data.Name)

	count, err := col.EstimatedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestFindOneAndReplace_UpsertInsertsWhenMissing(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	result, err := col.FindOneAndReplace(
		ctx,
		query.Field("email").Eq("new@x").Build(),
		user{Name: "New", Email: "new@x"},
		fractaldb.FindOneAndModifyOptions{Upsert: true, Return: fractaldb.After},
	)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "New", result.Data.Name)

	count, err := col.EstimatedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFindOneAndReplace_NoUpsertReturnsNilWhenMissing(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, newTestDB(t))

	result, err := col.FindOneAndReplace(
		ctx,
		query.Field("email").Eq("missing@x").Build(),
		user{Name: "New", Email: "missing@x"},
		fractaldb.FindOneAndModifyOptions{},
	)
	require.NoError(t, err)
	assert.Nil(t, result)
}
