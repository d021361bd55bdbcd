// Copyright (c) 2026 FractalDB Authors. All rights reserved.

/*
Package translate lowers a [query.Query] and [query.QueryOptions] against a
schema's field resolution rules into a single parameterised SQL fragment,
per §4.1. It is the busiest and most detail-sensitive part of the core: a
purely recursive descent over the algebra, with an optional bounded LRU
result cache in front of it for the common, non-dynamic query shapes.
*/
package translate

import (
	"fmt"
	"strings"

	"github.com/g5becks/fractaldb/internal/lru"
	"github.com/g5becks/fractaldb/query"
)

// Resolver resolves a logical field name to a SQL expression and to its
// underlying JSON path. [schema.Schema] satisfies this for any document
// type without translate needing to be generic itself.
type Resolver interface {
	Resolve(field string) string
	JSONPath(field string) string
}

// Result is the output of a translation: a WHERE-clause fragment (or a
// fully composed SELECT tail, for options-only translation) plus its
// bound parameters in the order they appear in SQL.
type Result struct {
	SQL    string
	Params []any
}

// QueryError is returned when translation encounters a structurally
// invalid node (e.g. an ElemMatch with an empty inner query), mapping to
// a [fractaldb.FractalError] of KindQuery at the collection layer.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string { return "translate: " + e.Message }

// Translator lowers queries against a fixed resolver, optionally caching
// results for cacheable query shapes (§4.1).
type Translator struct {
	cache   *lru.Cache[string, Result]
	enabled bool
}

// New returns a Translator. cacheSize <= 0 disables the cache entirely.
func New(cacheSize int, enabled bool) *Translator {
	var cache *lru.Cache[string, Result]
	if enabled && cacheSize > 0 {
		cache = lru.New[string, Result](cacheSize)
	}
	return &Translator{cache: cache, enabled: enabled}
}

// Purge empties the translator's result cache. A no-op if caching is
// disabled. Used by Collection.Drop to invalidate cached SQL for a
// collection whose table no longer exists (§4.3.5).
func (t *Translator) Purge() {
	if t.cache != nil {
		t.cache.Purge()
	}
}

// Where translates q alone into a WHERE-clause fragment, using the
// resolver's field resolution rules. The simplification pass is applied
// first (idempotent, so repeated translation of an already-simplified
// tree is a no-op).
func (t *Translator) Where(resolver Resolver, q query.Query) (Result, error) {
	simplified := q.Simplify()

	if t.cache != nil {
		if key, ok := simplified.Fingerprint(); ok {
			if cached, hit := t.cache.Get(key); hit {
				return cloneResult(cached), nil
			}
			result, err := t.translateWhere(resolver, simplified)
			if err != nil {
				return Result{}, err
			}
			t.cache.Put(key, result)
			return cloneResult(result), nil
		}
	}

	return t.translateWhere(resolver, simplified)
}

func cloneResult(r Result) Result {
	params := make([]any, len(r.Params))
	copy(params, r.Params)
	return Result{SQL: r.SQL, Params: params}
}

func (t *Translator) translateWhere(resolver Resolver, q query.Query) (Result, error) {
	c := &counter{}
	sql, params, err := lower(resolver, q, c)
	if err != nil {
		return Result{}, err
	}
	return Result{SQL: sql, Params: params}, nil
}

// counter assigns @pN parameter names in binding order, reset per
// translate call.
type counter struct{ n int }

func (c *counter) next() string {
	name := fmt.Sprintf("@p%d", c.n)
	c.n++
	return name
}

func lower(resolver Resolver, q query.Query, c *counter) (string, []any, error) {
	switch q.Kind() {
	case query.KindEmpty:
		return "1=1", nil, nil

	case query.KindField:
		return lowerField(resolver, q.Field(), q.Op(), c)

	case query.KindAnd:
		return lowerBoolList(resolver, q.Children(), "AND", c, true)

	case query.KindOr:
		return lowerBoolList(resolver, q.Children(), "OR", c, true)

	case query.KindNor:
		inner, params, err := lowerBoolList(resolver, q.Children(), "OR", c, false)
		if err != nil {
			return "", nil, err
		}
		return "NOT " + inner, params, nil

	case query.KindNot:
		inner, params, err := lower(resolver, q.Children()[0], c)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + inner + ")", params, nil
	}
	return "1=1", nil, nil
}

// lowerBoolList lowers an And/Or/Nor child list. allowEmpty sets the base
// truth value an empty list lowers to: And/Or pass true, matching every
// document per §4.1 ("And([])"/"Or([]) both reduce to Empty"). Nor passes
// false: its caller negates lowerBoolList's result, and Nor([]) must mean
// "nothing to exclude" (matches every document), which requires negating
// "0=1" rather than "1=1".
func lowerBoolList(resolver Resolver, children []query.Query, joiner string, c *counter, allowEmpty bool) (string, []any, error) {
	if len(children) == 0 {
		if allowEmpty {
			return "1=1", nil, nil
		}
		return "0=1", nil, nil
	}
	if len(children) == 1 {
		return lower(resolver, children[0], c)
	}

	var parts []string
	var params []any
	for _, child := range children {
		sql, p, err := lower(resolver, child, c)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return "(" + strings.Join(parts, " "+joiner+" ") + ")", params, nil
}

func lowerField(resolver Resolver, field string, op query.FieldOp, c *counter) (string, []any, error) {
	resolved := resolver.Resolve(field)

	switch o := op.(type) {
	case query.CompareOp:
		return lowerCompare(resolved, o, c)
	case query.StringOp:
		return lowerString(resolved, o, c)
	case query.ArrayOp:
		return lowerArray(resolver, field, o, c)
	case query.ExistsOp:
		if o.Exists {
			return resolved + " IS NOT NULL", nil, nil
		}
		return resolved + " IS NULL", nil, nil
	default:
		return "", nil, &QueryError{Message: fmt.Sprintf("unsupported operator for field %q", field)}
	}
}

func lowerCompare(resolved string, o query.CompareOp, c *counter) (string, []any, error) {
	switch o.Op {
	case query.Eq:
		p := c.next()
		return resolved + " = " + p, []any{o.Value.Interface()}, nil
	case query.Ne:
		p := c.next()
		return resolved + " != " + p, []any{o.Value.Interface()}, nil
	case query.Gt:
		p := c.next()
		return resolved + " > " + p, []any{o.Value.Interface()}, nil
	case query.Gte:
		p := c.next()
		return resolved + " >= " + p, []any{o.Value.Interface()}, nil
	case query.Lt:
		p := c.next()
		return resolved + " < " + p, []any{o.Value.Interface()}, nil
	case query.Lte:
		p := c.next()
		return resolved + " <= " + p, []any{o.Value.Interface()}, nil
	case query.In:
		if len(o.Values) == 0 {
			return "0=1", nil, nil
		}
		placeholders := make([]string, len(o.Values))
		params := make([]any, len(o.Values))
		for i, v := range o.Values {
			placeholders[i] = c.next()
			params[i] = v.Interface()
		}
		return resolved + " IN (" + strings.Join(placeholders, ", ") + ")", params, nil
	case query.NotIn:
		if len(o.Values) == 0 {
			return "1=1", nil, nil
		}
		placeholders := make([]string, len(o.Values))
		params := make([]any, len(o.Values))
		for i, v := range o.Values {
			placeholders[i] = c.next()
			params[i] = v.Interface()
		}
		return resolved + " NOT IN (" + strings.Join(placeholders, ", ") + ")", params, nil
	}
	return "", nil, &QueryError{Message: "unreachable compare operator"}
}

func lowerString(resolved string, o query.StringOp, c *counter) (string, []any, error) {
	switch o.Op {
	case query.Like:
		p := c.next()
		return resolved + " LIKE " + p, []any{o.Pattern}, nil
	case query.ILike:
		p := c.next()
		return "lower(" + resolved + ") LIKE lower(" + p + ")", []any{o.Pattern}, nil
	case query.Contains:
		p := c.next()
		return resolved + " LIKE " + p, []any{"%" + o.Pattern + "%"}, nil
	case query.StartsWith:
		p := c.next()
		return resolved + " LIKE " + p, []any{o.Pattern + "%"}, nil
	case query.EndsWith:
		p := c.next()
		return resolved + " LIKE " + p, []any{"%" + o.Pattern}, nil
	}
	return "", nil, &QueryError{Message: "unreachable string operator"}
}

func lowerArray(resolver Resolver, field string, o query.ArrayOp, c *counter) (string, []any, error) {
	path := resolver.JSONPath(field)

	switch o.Op {
	case query.Size:
		p := c.next()
		return fmt.Sprintf("json_array_length(body, '%s') = %s", path, p), []any{o.N}, nil

	case query.All:
		if len(o.Values) == 0 {
			return "1=1", nil, nil
		}
		var parts []string
		var params []any
		for _, v := range o.Values {
			p := c.next()
			parts = append(parts, fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(body, '%s') WHERE value = %s)", path, p))
			params = append(params, v.Interface())
		}
		return "(" + strings.Join(parts, " AND ") + ")", params, nil

	case query.Index:
		p := c.next()
		return fmt.Sprintf("json_extract(body, '%s[%d]') = %s", path, o.Idx, p), []any{o.At.Interface()}, nil

	case query.ElemMatch:
		if o.Inner == nil || o.Inner.IsEmpty() {
			return "", nil, &QueryError{Message: fmt.Sprintf("elem_match on field %q requires a non-empty inner query", field)}
		}
		inner := elemMatchResolver{}
		innerSQL, innerParams, err := lower(inner, *o.Inner, c)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(body, '%s') WHERE %s)", path, innerSQL), innerParams, nil
	}
	return "", nil, &QueryError{Message: "unreachable array operator"}
}

// elemMatchResolver resolves field names inside an ElemMatch inner query
// against the json_each row columns, per the Array(ElemMatch) resolution:
// a bare "value" (or "key") names the json_each column directly; a dotted
// "value.<subfield>" names a field inside an object array element.
type elemMatchResolver struct{}

func (elemMatchResolver) Resolve(field string) string {
	switch field {
	case "value", "key":
		return field
	}
	if sub, ok := strings.CutPrefix(field, "value."); ok {
		return fmt.Sprintf("json_extract(value, '$.%s')", sub)
	}
	return fmt.Sprintf("json_extract(value, '$.%s')", field)
}

func (elemMatchResolver) JSONPath(field string) string {
	if sub, ok := strings.CutPrefix(field, "value."); ok {
		return "$." + sub
	}
	return "$." + field
}
