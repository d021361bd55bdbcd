// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/g5becks/fractaldb/query"
)

func TestSimplify_EmptyAndCollapses(t *testing.T) {
	q := query.And().Simplify()
	assert.Equal(t, query.KindEmpty, q.Kind())
}

func TestSimplify_SingleChildCollapses(t *testing.T) {
	leaf := query.FieldNode("age", query.CompareOp{Op: query.Gt, Value: query.Int(1)})
	q := query.And(leaf).Simplify()
	assert.Equal(t, query.KindField, q.Kind())
	assert.Equal(t, "age", q.Field())
}

func TestSimplify_FlattensNestedAnd(t *testing.T) {
	a := query.FieldNode("a", query.ExistsOp{Exists: true})
	b := query.FieldNode("b", query.ExistsOp{Exists: true})
	c := query.FieldNode("c", query.ExistsOp{Exists: true})

	nested := query.And(query.And(a, b), c)
	got := nested.Simplify()

	assert.Equal(t, query.KindAnd, got.Kind())
	assert.Len(t, got.Children(), 3)
}

func TestSimplify_DoubleNotCollapses(t *testing.T) {
	leaf := query.FieldNode("a", query.ExistsOp{Exists: true})
	got := query.Not(query.Not(leaf)).Simplify()
	assert.Equal(t, query.KindField, got.Kind())
}

func TestSimplify_DropsEmptyChildren(t *testing.T) {
	leaf := query.FieldNode("a", query.ExistsOp{Exists: true})
	got := query.And(query.Empty(), leaf).Simplify()
	assert.Equal(t, query.KindField, got.Kind())
}

func TestSimplify_NorKeepsEmptyChildren(t *testing.T) {
	// Nor semantics differ from And/Or: an Empty child inside Nor means "not
	// everything", so it must not be silently dropped the way And/Or drop it.
	leaf := query.FieldNode("a", query.ExistsOp{Exists: true})
	got := query.Nor(query.Empty(), leaf).Simplify()
	assert.Equal(t, query.KindNor, got.Kind())
	assert.Len(t, got.Children(), 2)
}

func TestFingerprint_StableForEqualTrees(t *testing.T) {
	build := func() query.Query {
		return query.And(
			query.FieldNode("age", query.CompareOp{Op: query.Gte, Value: query.Int(21)}),
			query.FieldNode("name", query.StringOp{Op: query.Contains, Pattern: "an"}),
		).Simplify()
	}
	f1, ok1 := build().Fingerprint()
	f2, ok2 := build().Fingerprint()
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, f1, f2)
}

func TestFingerprint_ElemMatchBypassesCache(t *testing.T) {
	inner := query.FieldNode("sku", query.CompareOp{Op: query.Eq, Value: query.Text("x")})
	q := query.FieldNode("items", query.ArrayOp{Op: query.ElemMatch, Inner: &inner})
	_, ok := q.Fingerprint()
	assert.False(t, ok)
}

func TestFingerprint_IndexBypassesCache(t *testing.T) {
	q := query.FieldNode("items", query.ArrayOp{Op: query.Index, Idx: 0, At: query.Text("x")})
	_, ok := q.Fingerprint()
	assert.False(t, ok)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, query.Empty().IsEmpty())
	assert.True(t, query.And().IsEmpty())
	assert.False(t, query.FieldNode("a", query.ExistsOp{Exists: true}).IsEmpty())
}
