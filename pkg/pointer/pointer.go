// Copyright (c) 2026 FractalDB Authors. All rights reserved.

/*
Package pointer provides utilities for working with pointers in Go.

FractalDB's QueryOptions model `option<T>` values from the spec's algebra
as plain Go pointers (limit, skip); this package removes the boilerplate
of constructing and safely dereferencing them.

Key Functions:
  - To: Creates a pointer from a value literal.
  - Val: Safely dereferences a pointer, returning the zero value if nil.
*/
package pointer

// To returns a pointer to the provided value.
// It is useful when you need to pass a primitive value to a function or struct field
// that expects a pointer (e.g. pointer.To("something")).
func To[T any](v T) *T {
	return &v
}

// Val safely dereferences a pointer.
// If the pointer is nil, it returns the zero value of the underlying type.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
