// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package query

// NodeKind tags the shape of a [Query] node.
type NodeKind int

const (
	KindEmpty NodeKind = iota
	KindField
	KindAnd
	KindOr
	KindNor
	KindNot
)

// Query is a node in the filter algebra. A KindEmpty node matches every
// document. A KindField node tests Field against Op. The boolean
// combinators (KindAnd, KindOr, KindNor, KindNot) carry their operands in
// Children.
type Query struct {
	kind     NodeKind
	field    string
	op       FieldOp
	children []Query
}

// Empty returns the query that matches every document.
func Empty() Query { return Query{kind: KindEmpty} }

// FieldNode returns a leaf query testing field against op.
func FieldNode(field string, op FieldOp) Query {
	return Query{kind: KindField, field: field, op: op}
}

// And returns the conjunction of qs. An empty or single-element qs collapses
// per [Query.Simplify].
func And(qs ...Query) Query { return Query{kind: KindAnd, children: qs} }

// Or returns the disjunction of qs.
func Or(qs ...Query) Query { return Query{kind: KindOr, children: qs} }

// Nor matches documents for which none of qs match.
func Nor(qs ...Query) Query { return Query{kind: KindNor, children: qs} }

// Not negates q.
func Not(q Query) Query { return Query{kind: KindNot, children: []Query{q}} }

// Kind reports the node's shape.
func (q Query) Kind() NodeKind { return q.kind }

// Field returns the field name of a KindField node, or "" otherwise.
func (q Query) Field() string { return q.field }

// Op returns the operator of a KindField node, or nil otherwise.
func (q Query) Op() FieldOp { return q.op }

// Children returns the operands of a boolean-combinator node, or nil
// otherwise.
func (q Query) Children() []Query { return q.children }

// IsEmpty reports whether q is the always-match query, including an And/Or
// node left with zero operands after simplification.
func (q Query) IsEmpty() bool {
	switch q.kind {
	case KindEmpty:
		return true
	case KindAnd, KindOr:
		return len(q.children) == 0
	default:
		return false
	}
}

// Simplify applies the idempotent normalization rules from §4.1:
//   - And()/Or() with zero children collapse to Empty.
//   - And(q)/Or(q) with exactly one child collapses to that child.
//   - Nested And-of-And (and Or-of-Or) nodes are flattened one level.
//   - Not(Not(q)) collapses to q.
//   - Empty children are dropped from And/Or before the above rules; Nor
//     keeps them, and a Nor node is never collapsed.
//
// Simplify is applied bottom-up and recursively, so it is safe to call on
// the root of any tree built via the constructors or the [Builder] DSL.
func (q Query) Simplify() Query {
	switch q.kind {
	case KindAnd, KindOr, KindNor:
		return q.simplifyCombinator()
	case KindNot:
		inner := q.children[0].Simplify()
		if inner.kind == KindNot {
			return inner.children[0]
		}
		return Query{kind: KindNot, children: []Query{inner}}
	default:
		return q
	}
}

func (q Query) simplifyCombinator() Query {
	flat := make([]Query, 0, len(q.children))
	for _, c := range q.children {
		c = c.Simplify()
		if c.kind == q.kind && (q.kind == KindAnd || q.kind == KindOr) {
			// Flatten nested And-of-And / Or-of-Or one level.
			flat = append(flat, c.children...)
			continue
		}
		if c.IsEmpty() && q.kind != KindNor {
			continue
		}
		flat = append(flat, c)
	}

	if q.kind != KindNor {
		switch len(flat) {
		case 0:
			return Empty()
		case 1:
			return flat[0]
		}
	}

	return Query{kind: q.kind, children: flat}
}

// Fingerprint returns a deterministic digest of q for use as a translator
// cache key, and ok=false if any node in the tree carries a non-cacheable
// operator (ElemMatch, Index; see [FieldOp]).
func (q Query) Fingerprint() (string, bool) {
	switch q.kind {
	case KindEmpty:
		return "E", true
	case KindField:
		if q.op == nil {
			return "", false
		}
		frag, ok := q.op.fingerprint()
		if !ok {
			return "", false
		}
		return "F(" + q.field + ":" + frag + ")", true
	case KindAnd, KindOr, KindNor, KindNot:
		tag := map[NodeKind]string{KindAnd: "A", KindOr: "O", KindNor: "R", KindNot: "N"}[q.kind]
		out := tag + "("
		for i, c := range q.children {
			if i > 0 {
				out += ","
			}
			frag, ok := c.Fingerprint()
			if !ok {
				return "", false
			}
			out += frag
		}
		return out + ")", true
	default:
		return "", false
	}
}
