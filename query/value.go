// Copyright (c) 2026 FractalDB Authors. All rights reserved.

// Package query is the algebraic representation of filters, sorts,
// projections and pagination described in spec §3-4.1. It is deliberately
// decoupled from any document type: values carried by operator nodes are
// type-erased into [Value] at construction time, and the translator binds
// them to the backend directly, preserving their semantic type (see §9
// Design Note 1).
package query

import "fmt"

// Kind tags the dynamic type carried by a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindBlob
	KindArray
)

// Value is the type-erased payload carried by operator nodes in the query
// algebra. Exactly one of its accessor methods is meaningful, selected by
// Kind.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	blob  []byte
	array []Value
}

// Null returns the null [Value].
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a bool as a [Value].
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int wraps an int64 as a [Value].
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a float64 as a [Value].
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text wraps a string as a [Value].
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Blob wraps raw bytes as a [Value].
func Blob(v []byte) Value { return Value{kind: KindBlob, blob: v} }

// Array wraps a slice of values as a [Value], used by Array(All) and similar
// multi-valued operators.
func Array(vs ...Value) Value { return Value{kind: KindArray, array: vs} }

// Of converts a Go value into a [Value] using its dynamic type. Unsupported
// types (structs, maps, channels, ...) produce a KindText value holding
// fmt.Sprint(v); callers with richer needs should construct a [Value]
// directly via [Int], [Float], etc.
func Of(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return Text(t)
	case []byte:
		return Blob(t)
	case Value:
		return t
	default:
		return Text(fmt.Sprint(v))
	}
}

// OfAll converts a slice of Go values into []Value via [Of].
func OfAll(vs []any) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Of(v)
	}
	return out
}

// Kind reports the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Interface returns v's payload as an `any`, suitable for binding directly
// to a `database/sql` parameter.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		if v.b {
			return int64(1)
		}
		return int64(0)
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBlob:
		return v.blob
	case KindArray:
		out := make([]any, len(v.array))
		for i, e := range v.array {
			out[i] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// Elements returns the inner values of a KindArray value, or nil otherwise.
func (v Value) Elements() []Value { return v.array }

// String renders v for debugging and cache-key digests; it is not a SQL
// literal and must never be interpolated into a query string.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.b)
	case KindInt:
		return fmt.Sprintf("int(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("float(%v)", v.f)
	case KindText:
		return fmt.Sprintf("text(%q)", v.s)
	case KindBlob:
		return fmt.Sprintf("blob(%x)", v.blob)
	case KindArray:
		return fmt.Sprintf("array(%v)", v.array)
	default:
		return "?"
	}
}
