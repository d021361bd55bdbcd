// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package schema

import (
	"fmt"
	"strings"
)

// DDL is the pair of statements produced by [Build]: a single CREATE TABLE
// and the ordered list of CREATE INDEX statements that must run after it.
type DDL struct {
	CreateTable string
	CreateIndexes []string
}

// Build compiles table into the DDL described in §4.2: a base table with
// `_id`, `body`, `created_at`, `updated_at`, one `GENERATED ALWAYS AS (...)
// VIRTUAL` column per indexed field, and a `CREATE [UNIQUE] INDEX` per
// indexed field and per compound index.
func Build[T any](table string, s Schema[T]) (DDL, error) {
	if err := s.ValidateDefinition(); err != nil {
		return DDL{}, err
	}

	var cols strings.Builder
	fmt.Fprintf(&cols, "CREATE TABLE IF NOT EXISTS %s (\n", table)
	cols.WriteString("\t_id TEXT PRIMARY KEY,\n")
	cols.WriteString("\tbody BLOB NOT NULL,\n")
	cols.WriteString("\tcreated_at INTEGER NOT NULL,\n")
	cols.WriteString("\tupdated_at INTEGER NOT NULL")

	for _, f := range s.Fields {
		if !f.Indexed && !f.Unique {
			continue
		}
		fmt.Fprintf(&cols, ",\n\t%s %s GENERATED ALWAYS AS (json_extract(body, '%s')) VIRTUAL",
			f.column(), f.SQLType.String(), f.path())
	}
	cols.WriteString("\n)")

	var indexes []string
	for _, f := range s.Fields {
		if !f.Indexed && !f.Unique {
			continue
		}
		indexes = append(indexes, singleColumnIndex(table, f))
	}
	for _, idx := range s.CompoundIndexes {
		indexes = append(indexes, compoundColumnIndex(table, s, idx))
	}

	return DDL{CreateTable: cols.String(), CreateIndexes: indexes}, nil
}

func singleColumnIndex(table string, f FieldDef) string {
	unique := ""
	if f.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS idx_%s_%s ON %s(%s)",
		unique, table, f.Name, table, f.column())
}

func compoundColumnIndex[T any](table string, s Schema[T], idx CompoundIndex) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	cols := make([]string, len(idx.Fields))
	for i, name := range idx.Fields {
		def, _ := s.field(name)
		cols[i] = def.column()
	}
	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s(%s)",
		unique, idx.Name, table, strings.Join(cols, ", "))
}
