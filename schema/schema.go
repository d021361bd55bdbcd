// Copyright (c) 2026 FractalDB Authors. All rights reserved.

/*
Package schema declares the shape of a collection's documents and compiles
that declaration into SQLite DDL: a base table carrying the binary JSON
body plus one `GENERATED ALWAYS AS (...) VIRTUAL` column per indexed field,
and the secondary/compound indexes built on top of them.
*/
package schema

import "fmt"

// SQLType is the closed set of SQLite column types a generated column may
// be declared with.
type SQLType int

const (
	Text SQLType = iota
	Integer
	Real
	Blob
	Numeric
	Boolean
)

// String renders the SQLite type keyword. Boolean is stored as INTEGER
// with the 0/1 convention; there is no native boolean column type.
func (t SQLType) String() string {
	switch t {
	case Text:
		return "TEXT"
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Blob:
		return "BLOB"
	case Numeric:
		return "NUMERIC"
	case Boolean:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// FieldDef declares one field of a document's JSON body.
type FieldDef struct {
	// Name is the logical field name used throughout the query algebra.
	Name string
	// Path is the dotted JSON path extracted by json_extract. Defaults to
	// "$.<Name>" when empty (see [FieldDef.path]).
	Path string
	// SQLType is the declared type of the generated column, if Indexed.
	SQLType SQLType
	// Indexed materialises a generated column `_<Name>` and a matching
	// single-column index.
	Indexed bool
	// Unique makes the generated column's index a UNIQUE index. Implies
	// Indexed semantics even if Indexed was left false.
	Unique bool
	// Nullable allows the JSON value at Path to be absent or JSON null.
	// Schema builder does not enforce this; it is documentation for callers
	// and for a future validator.
	Nullable bool
}

func (f FieldDef) path() string {
	if f.Path != "" {
		return f.Path
	}
	return "$." + f.Name
}

// column returns the generated column name for an indexed field.
func (f FieldDef) column() string { return "_" + f.Name }

// CompoundIndex declares a multi-column index over already-indexed fields.
type CompoundIndex struct {
	// Name is the SQL index name.
	Name string
	// Fields is the ordered list of field names the index covers; each
	// must reference a field present in the schema's Fields list and
	// marked Indexed (or Unique).
	Fields []string
	// Unique makes this a UNIQUE index.
	Unique bool
}

// Validator validates a decoded value before it is persisted. A non-nil
// error message maps to a [fractaldb.FractalError] of KindValidation.
type Validator[T any] func(value T) error

// Schema declares the field layout, indexes, and validation policy for
// documents of type T. A Schema is immutable once passed to
// [fractaldb.CollectionFor]; it is materialised into the backend the
// first time the collection is requested and is never reconciled against
// an existing table afterward (§4.2).
type Schema[T any] struct {
	Fields          []FieldDef
	CompoundIndexes []CompoundIndex
	// Timestamps enables automatic created_at/updated_at maintenance.
	// FractalDB always maintains these columns; the flag is reserved for
	// forward compatibility with a future opt-out and defaults to true.
	Timestamps bool
	Validate   Validator[T]
}

// New returns a Schema with Timestamps enabled and no fields, indexes, or
// validator. Use [Schema.WithField] and [Schema.WithIndex] to build it up.
func New[T any]() Schema[T] {
	return Schema[T]{Timestamps: true}
}

// WithField appends a field definition and returns the schema for chaining.
func (s Schema[T]) WithField(f FieldDef) Schema[T] {
	s.Fields = append(s.Fields, f)
	return s
}

// WithIndex appends a compound index definition and returns the schema for
// chaining.
func (s Schema[T]) WithIndex(idx CompoundIndex) Schema[T] {
	s.CompoundIndexes = append(s.CompoundIndexes, idx)
	return s
}

// WithValidator attaches a validator and returns the schema for chaining.
func (s Schema[T]) WithValidator(v Validator[T]) Schema[T] {
	s.Validate = v
	return s
}

// field looks up a field definition by logical name.
func (s Schema[T]) field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Resolve returns the SQL expression used to reference field name f in a
// WHERE/ORDER BY/SELECT clause, per the field-resolution rule of §4.1:
// metadata columns resolve directly, indexed schema fields resolve to
// their generated column, and everything else falls back to
// json_extract(body, '<path>'), tolerating unknown field names.
func (s Schema[T]) Resolve(f string) string {
	switch f {
	case "id":
		return "_id"
	case "created_at":
		return "created_at"
	case "updated_at":
		return "updated_at"
	}
	if def, ok := s.field(f); ok && (def.Indexed || def.Unique) {
		return def.column()
	}
	path := "$." + f
	if def, ok := s.field(f); ok {
		path = def.path()
	}
	return fmt.Sprintf("json_extract(body, '%s')", path)
}

// JSONPath returns the JSON path used to extract field f, independent of
// whether it is indexed. Used by operators (json_array_length, json_each)
// that must always extract through the body column even for indexed
// fields.
func (s Schema[T]) JSONPath(f string) string {
	if def, ok := s.field(f); ok {
		return def.path()
	}
	return "$." + f
}

// ValidateDefinition checks the invariant from §4.2: every field referenced by a
// compound index must exist in the schema and be marked Indexed or
// Unique.
func (s Schema[T]) ValidateDefinition() error {
	for _, idx := range s.CompoundIndexes {
		for _, name := range idx.Fields {
			def, ok := s.field(name)
			if !ok {
				return fmt.Errorf("schema: compound index %q references unknown field %q", idx.Name, name)
			}
			if !def.Indexed && !def.Unique {
				return fmt.Errorf("schema: compound index %q references non-indexed field %q", idx.Name, name)
			}
		}
	}
	return nil
}
