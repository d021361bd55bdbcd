// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package translate

import (
	"fmt"
	"strings"

	"github.com/g5becks/fractaldb/query"
)

// Translate lowers q and opts together into the WHERE fragment, the
// ORDER BY / LIMIT / OFFSET tail, and the combined parameter list in
// binding order. Cursor pagination rewrites to an additional conjunct on
// the first sort key, per §4.1; Skip together with a Cursor is rejected by
// [query.QueryOptions.Validate], so a cursor query never has an OFFSET. A
// Search adds an OR-of-LIKE conjunct over its fields.
func (t *Translator) Translate(resolver Resolver, q query.Query, opts query.QueryOptions) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, &QueryError{Message: err.Error()}
	}

	where, err := t.Where(resolver, q)
	if err != nil {
		return Result{}, err
	}

	sql := where.SQL
	params := append([]any(nil), where.Params...)

	if opts.Cursor != nil {
		conjunct, cursorParams := lowerCursor(resolver, opts.Sort, *opts.Cursor, &counter{n: countPlaceholders(sql)})
		sql = "(" + sql + ") AND " + conjunct
		params = append(params, cursorParams...)
	}

	if opts.Search != nil && len(opts.Search.Fields) > 0 {
		c := &counter{n: countPlaceholders(sql)}
		parts := make([]string, len(opts.Search.Fields))
		for i, field := range opts.Search.Fields {
			parts[i] = resolver.Resolve(field) + " LIKE " + c.next()
			params = append(params, "%"+opts.Search.Term+"%")
		}
		sql = "(" + sql + ") AND (" + strings.Join(parts, " OR ") + ")"
	}

	if len(opts.Sort) > 0 {
		parts := make([]string, len(opts.Sort))
		for i, key := range opts.Sort {
			dir := "ASC"
			if key.Direction == query.Descending {
				dir = "DESC"
			}
			parts[i] = fmt.Sprintf("%s %s", resolver.Resolve(key.Field), dir)
		}
		sql += " ORDER BY " + strings.Join(parts, ", ")
	}

	optN := 0
	nextOpt := func() string {
		name := fmt.Sprintf("@opt%d", optN)
		optN++
		return name
	}

	if opts.Limit != nil {
		sql += fmt.Sprintf(" LIMIT %s", nextOpt())
		params = append(params, *opts.Limit)
	}
	if opts.Skip != nil {
		sql += fmt.Sprintf(" OFFSET %s", nextOpt())
		params = append(params, *opts.Skip)
	}

	return Result{SQL: sql, Params: params}, nil
}

// countPlaceholders counts existing @pN markers so a cursor conjunct
// appended after the WHERE fragment continues the same placeholder
// numbering rather than colliding with it.
func countPlaceholders(sql string) int {
	return strings.Count(sql, "@p")
}

func lowerCursor(resolver Resolver, sort []query.SortKey, cur query.Cursor, c *counter) (string, []any) {
	// Rewrite against the first sort key only, per §4.1: the cursor value
	// for the leading key determines the comparison. The remaining sort
	// keys, including the final "id" that [query.QueryOptions.Validate]
	// requires, take no part in the conjunct, so rows that tie with the
	// cursor row on the first key are excluded from the page.
	key := sort[0]
	resolved := resolver.Resolve(key.Field)

	forward := cur.After
	ascending := key.Direction == query.Ascending
	var op string
	switch {
	case forward && ascending:
		op = ">"
	case forward && !ascending:
		op = "<"
	case !forward && ascending:
		op = "<"
	default:
		op = ">"
	}

	p := c.next()
	return resolved + " " + op + " " + p, []any{cur.Values[0].Interface()}
}
