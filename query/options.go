// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package query

import "github.com/g5becks/fractaldb/pkg/pointer"

// SortDirection orders a single sort key.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// SortKey pairs a field with a direction. A Sort list's last key must be
// unique across all documents when used together with [Cursor] pagination
// (§9 Design Note 6): a tie on every key leaves the cursor unable to
// determine a deterministic successor row.
type SortKey struct {
	Field     string
	Direction SortDirection
}

// Cursor resumes a sorted scan from the row identified by Values, one
// entry per [QueryOptions.Sort] key in the same order. After selects
// forward pagination (values strictly greater/less than, per sort
// direction); a false After selects backward pagination with the
// comparison inverted. After and a simultaneous "before" cursor are
// mutually exclusive by construction: Cursor carries one direction, not
// both optional ends.
type Cursor struct {
	Values []Value
	After  bool
}

// Search requests a LIKE-based substring match across Fields, independent
// of the main filter [Query] tree. This is not full-text search (Non-goal);
// it lowers to an OR-of-LIKE fragment ANDed with the filter.
type Search struct {
	Fields []string
	Term   string
}

// QueryOptions carries everything about a find operation that is not part
// of the filter predicate: sort order, pagination, projection and a plain
// substring search. Skip and Cursor-based pagination are mutually
// exclusive; [QueryOptions.Validate] enforces this.
type QueryOptions struct {
	Sort    []SortKey
	Limit   *int
	Skip    *int
	Cursor  *Cursor
	Project []string
	Omit    []string
	Search  *Search
}

// NewQueryOptions returns the zero-value options: no sort, no limit, no
// pagination, no projection, no search.
func NewQueryOptions() QueryOptions { return QueryOptions{} }

// WithLimit sets an upper bound on returned rows.
func (o QueryOptions) WithLimit(n int) QueryOptions {
	o.Limit = pointer.To(n)
	return o
}

// WithSkip sets the number of matching rows to discard from the head of
// the result before applying Limit. Mutually exclusive with Cursor.
func (o QueryOptions) WithSkip(n int) QueryOptions {
	o.Skip = pointer.To(n)
	return o
}

// WithSort appends a sort key.
func (o QueryOptions) WithSort(field string, dir SortDirection) QueryOptions {
	o.Sort = append(o.Sort, SortKey{Field: field, Direction: dir})
	return o
}

// WithCursor resumes after the given cursor. Mutually exclusive with Skip.
func (o QueryOptions) WithCursor(c Cursor) QueryOptions {
	o.Cursor = &c
	return o
}

// WithProject restricts the returned fields to exactly fields plus
// metadata. Mutually exclusive with [QueryOptions.WithOmit].
func (o QueryOptions) WithProject(fields ...string) QueryOptions {
	o.Project = fields
	return o
}

// WithOmit excludes fields from the returned documents. Mutually
// exclusive with [QueryOptions.WithProject].
func (o QueryOptions) WithOmit(fields ...string) QueryOptions {
	o.Omit = fields
	return o
}

// WithSearch adds a substring search across fields.
func (o QueryOptions) WithSearch(term string, fields ...string) QueryOptions {
	o.Search = &Search{Fields: fields, Term: term}
	return o
}

// Validate checks the mutual-exclusion and well-formedness rules from §3
// and §9 Design Note "Cursor pagination semantics": Skip and Cursor cannot
// both be set; Select and Omit cannot both be set; a Cursor requires a
// non-empty Sort whose final key is "id", the one column guaranteed
// unique per row, and exactly one cursor value per sort key.
func (o QueryOptions) Validate() error {
	if o.Skip != nil && o.Cursor != nil {
		return newOptionsErr("skip and cursor are mutually exclusive")
	}
	if len(o.Project) > 0 && len(o.Omit) > 0 {
		return newOptionsErr("select and omit are mutually exclusive")
	}
	if o.Cursor != nil {
		if len(o.Sort) == 0 {
			return newOptionsErr("cursor pagination requires at least one sort key")
		}
		if o.Sort[len(o.Sort)-1].Field != "id" {
			return newOptionsErr("cursor pagination requires the final sort key to be \"id\" for a unique tail key")
		}
		if len(o.Cursor.Values) != len(o.Sort) {
			return newOptionsErr("cursor values must match the number of sort keys")
		}
	}
	if pointer.Val(o.Limit) < 0 {
		return newOptionsErr("limit must be non-negative")
	}
	if pointer.Val(o.Skip) < 0 {
		return newOptionsErr("skip must be non-negative")
	}
	return nil
}

// optionsErr is a minimal local error so query does not import the root
// fractaldb package (which would create an import cycle); callers at the
// collection layer translate it into a [fractaldb.FractalError] of
// KindInvalidOperation.
type optionsErr struct{ msg string }

func (e *optionsErr) Error() string { return e.msg }

func newOptionsErr(msg string) error { return &optionsErr{msg: msg} }
