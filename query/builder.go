// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package query

// Builder assembles a [Query] tree with a fluent, method-chaining API. It
// is core surface, not CLI sugar (§9 Design Note 3): callers finish a
// chain with [Builder.Build] to get the [Query] every [Collection] read
// method accepts.
//
// A zero-value Builder is not usable; create one with [Field] or [AndQ] /
// [OrQ] / [NorQ].
type Builder struct {
	q Query
}

// Field starts a leaf condition on the named field.
func Field(name string) *FieldBuilder {
	return &FieldBuilder{field: name}
}

// FieldBuilder accumulates the operator for a single field before it is
// finalized into a [Query] via one of its terminal methods.
type FieldBuilder struct {
	field string
}

func (f *FieldBuilder) build(op FieldOp) *Builder {
	return &Builder{q: FieldNode(f.field, op)}
}

// Eq matches documents where the field equals v.
func (f *FieldBuilder) Eq(v any) *Builder { return f.build(CompareOp{Op: Eq, Value: Of(v)}) }

// Ne matches documents where the field does not equal v.
func (f *FieldBuilder) Ne(v any) *Builder { return f.build(CompareOp{Op: Ne, Value: Of(v)}) }

// Gt matches documents where the field is greater than v.
func (f *FieldBuilder) Gt(v any) *Builder { return f.build(CompareOp{Op: Gt, Value: Of(v)}) }

// Gte matches documents where the field is greater than or equal to v.
func (f *FieldBuilder) Gte(v any) *Builder { return f.build(CompareOp{Op: Gte, Value: Of(v)}) }

// Lt matches documents where the field is less than v.
func (f *FieldBuilder) Lt(v any) *Builder { return f.build(CompareOp{Op: Lt, Value: Of(v)}) }

// Lte matches documents where the field is less than or equal to v.
func (f *FieldBuilder) Lte(v any) *Builder { return f.build(CompareOp{Op: Lte, Value: Of(v)}) }

// In matches documents where the field equals one of vs.
func (f *FieldBuilder) In(vs ...any) *Builder { return f.build(CompareOp{Op: In, Values: OfAll(vs)}) }

// NotIn matches documents where the field equals none of vs.
func (f *FieldBuilder) NotIn(vs ...any) *Builder {
	return f.build(CompareOp{Op: NotIn, Values: OfAll(vs)})
}

// Like matches a SQL LIKE pattern, case-sensitive per the collation of the
// underlying column.
func (f *FieldBuilder) Like(pattern string) *Builder {
	return f.build(StringOp{Op: Like, Pattern: pattern})
}

// ILike matches pattern case-insensitively.
func (f *FieldBuilder) ILike(pattern string) *Builder {
	return f.build(StringOp{Op: ILike, Pattern: pattern})
}

// Contains matches documents whose field contains substr.
func (f *FieldBuilder) Contains(substr string) *Builder {
	return f.build(StringOp{Op: Contains, Pattern: substr})
}

// StartsWith matches documents whose field begins with prefix.
func (f *FieldBuilder) StartsWith(prefix string) *Builder {
	return f.build(StringOp{Op: StartsWith, Pattern: prefix})
}

// EndsWith matches documents whose field ends with suffix.
func (f *FieldBuilder) EndsWith(suffix string) *Builder {
	return f.build(StringOp{Op: EndsWith, Pattern: suffix})
}

// Exists matches documents where the field is present (and non-null).
func (f *FieldBuilder) Exists() *Builder { return f.build(ExistsOp{Exists: true}) }

// Missing matches documents where the field is absent or null.
func (f *FieldBuilder) Missing() *Builder { return f.build(ExistsOp{Exists: false}) }

// All matches documents where the field, an array, contains every element
// of vs.
func (f *FieldBuilder) All(vs ...any) *Builder {
	return f.build(ArrayOp{Op: All, Values: OfAll(vs)})
}

// Size matches documents where the field, an array, has exactly n elements.
func (f *FieldBuilder) Size(n int64) *Builder {
	return f.build(ArrayOp{Op: Size, N: n})
}

// ElemMatch matches documents where the field, an array of objects, has at
// least one element satisfying inner. Bypasses the translator cache (§4.1).
func (f *FieldBuilder) ElemMatch(inner *Builder) *Builder {
	q := inner.Build()
	return f.build(ArrayOp{Op: ElemMatch, Inner: &q})
}

// Index matches documents where the field, an array, has the element at
// idx equal to v. Bypasses the translator cache (§4.1).
func (f *FieldBuilder) Index(idx int, v any) *Builder {
	return f.build(ArrayOp{Op: Index, Idx: idx, At: Of(v)})
}

// Build finalizes the builder into an immutable, simplified [Query].
func (b *Builder) Build() Query { return b.q.Simplify() }

// And combines b with more and others via conjunction.
func (b *Builder) And(others ...*Builder) *Builder {
	children := append([]Query{b.q}, buildAll(others)...)
	return &Builder{q: And(children...)}
}

// Or combines b with others via disjunction.
func (b *Builder) Or(others ...*Builder) *Builder {
	children := append([]Query{b.q}, buildAll(others)...)
	return &Builder{q: Or(children...)}
}

// Not negates b.
func (b *Builder) Not() *Builder { return &Builder{q: Not(b.q)} }

// AndQ combines top-level builders into a conjunction; convenient when the
// operands are unrelated field conditions rather than a chain.
func AndQ(bs ...*Builder) *Builder { return &Builder{q: And(buildAll(bs)...)} }

// OrQ combines top-level builders into a disjunction.
func OrQ(bs ...*Builder) *Builder { return &Builder{q: Or(buildAll(bs)...)} }

// NorQ matches documents for which none of bs match.
func NorQ(bs ...*Builder) *Builder { return &Builder{q: Nor(buildAll(bs)...)} }

func buildAll(bs []*Builder) []Query {
	out := make([]Query, len(bs))
	for i, b := range bs {
		out[i] = b.q
	}
	return out
}
