// Package sql implements the native SQL model renderer of tmplgen.
//
// The renderer is written with the Jennifer code generation library instead
// of a text template and provides the "model_gen" template: the
// always-regenerated base model of a table.
//
// Usage:
//
//	import (
//	    "github.com/syssam/tmplgen/compiler/gen"
//	    "github.com/syssam/tmplgen/compiler/gen/sql"
//	)
//
//	g, err := gen.NewGenerator(
//	    gen.WithRoot(dir),
//	    gen.WithNatives(sql.NewModel()),
//	)
//
// For a table "project" with the primary key "id" the renderer emits
// models/generated/project_gen.go containing:
//
//	ProjectTable      // table name constant
//	ProjectColumns    // column names
//	ProjectQuerier    // implemented by *sql.DB, *sql.Tx and *sql.Conn
//	ProjectBase       // stored values of a record
//	IsProjectNew      // true when all primary-key values are nil
//	LoadProject       // load by primary key
//	LoadProjectOrNew  // load, or return an empty record when new
//
// Tables with a composite primary key take one parameter per key column,
// in key order.
package sql
