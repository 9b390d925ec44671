// Package dialect defines the database dialects tmplgen knows about.
//
// A dialect decides the bind parameter syntax and identifier quoting of the
// SQL emitted into generated models, and selects the catalog queries used
// when table metadata is read from a live database.
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Sub-packages
//
//   - dialect/sql: opening database connections by dialect name
//   - dialect/introspect: reading table metadata from a database catalog
package dialect
