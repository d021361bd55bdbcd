// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package query

// FieldOp is the operator payload attached to a [Field] node: exactly one
// of [CompareOp], [StringOp], [ArrayOp] or [ExistsOp].
type FieldOp interface {
	isFieldOp()
	// fingerprint returns a deterministic, cache-safe digest fragment,
	// prefixed by operator family so equal kind numbers in different
	// families do not collide. ElemMatch (a nested query) and Index (an
	// array index lookup) return ok=false, signalling the cache to bypass
	// them (§4.1).
	fingerprint() (digest string, ok bool)
}

// # Compare

// CompareKind enumerates scalar comparison operators.
type CompareKind int

const (
	Eq CompareKind = iota
	Ne
	Gt
	Gte
	Lt
	Lte
	In
	NotIn
)

// CompareOp is a scalar comparison against a field.
type CompareOp struct {
	Op     CompareKind
	Value  Value   // Eq, Ne, Gt, Gte, Lt, Lte
	Values []Value // In, NotIn
}

func (CompareOp) isFieldOp() {}

func (c CompareOp) fingerprint() (string, bool) {
	switch c.Op {
	case In, NotIn:
		d := "c" + fingerprintKind(int(c.Op))
		for _, v := range c.Values {
			d += "|" + v.String()
		}
		return d, true
	default:
		return "c" + fingerprintKind(int(c.Op)) + "|" + c.Value.String(), true
	}
}

// # String

// StringKind enumerates textual match operators.
type StringKind int

const (
	Like StringKind = iota
	ILike
	Contains
	StartsWith
	EndsWith
)

// StringOp is a LIKE-family operator against a text field.
type StringOp struct {
	Op      StringKind
	Pattern string
}

func (StringOp) isFieldOp() {}

func (s StringOp) fingerprint() (string, bool) {
	return "s" + fingerprintKind(int(s.Op)) + "|" + s.Pattern, true
}

// # Array

// ArrayKind enumerates array-valued operators.
type ArrayKind int

const (
	All ArrayKind = iota
	Size
	ElemMatch
	Index
)

// ArrayOp is an operator over a JSON array field.
type ArrayOp struct {
	Op     ArrayKind
	Values []Value // All
	N      int64   // Size
	Inner  *Query  // ElemMatch
	Idx    int     // Index
	At     Value   // Index
}

func (ArrayOp) isFieldOp() {}

func (a ArrayOp) fingerprint() (string, bool) {
	switch a.Op {
	case ElemMatch:
		// ElemMatch carries a nested query; the spec requires it bypass the cache.
		return "", false
	case Index:
		// Array index lookups bypass the cache (§4.1).
		return "", false
	case All:
		d := "a" + fingerprintKind(int(a.Op))
		for _, v := range a.Values {
			d += "|" + v.String()
		}
		return d, true
	case Size:
		return "a" + fingerprintKind(int(a.Op)) + "|" + fingerprintInt(a.N), true
	default:
		return "", false
	}
}

// # Exists

// ExistsOp matches presence (or absence) of a field's value.
type ExistsOp struct {
	Exists bool
}

func (ExistsOp) isFieldOp() {}

func (e ExistsOp) fingerprint() (string, bool) {
	if e.Exists {
		return "exists", true
	}
	return "missing", true
}

func fingerprintKind(k int) string {
	const digits = "0123456789"
	if k == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for k > 0 {
		i--
		buf[i] = digits[k%10]
		k /= 10
	}
	return string(buf[i:])
}

func fingerprintInt(n int64) string {
	return fingerprintKind(int(n))
}
