// Package sql opens database connections by dialect name and runs the
// catalog queries of dialect/introspect.
//
// # Drivers
//
// The package registers one database/sql driver per dialect:
//
//   - mysql: github.com/go-sql-driver/mysql
//   - postgres: github.com/lib/pq
//   - sqlite: modernc.org/sqlite (pure Go, no cgo)
//
// Open accepts the dialect names and aliases of dialect.Normalize:
//
//	drv, err := sql.Open("postgresql", "postgres://localhost/shop?sslmode=disable")
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
// # Queries
//
// Query follows the (ctx, query, args, v) calling convention, where v is a
// *Rows receiving the result set:
//
//	rows := &sql.Rows{}
//	if err := drv.Query(ctx, "SELECT name FROM sqlite_master", []any{}, rows); err != nil {
//	    return err
//	}
//	err = sql.ScanAll(rows, func(s sql.ColumnScanner) error { ... })
//
// # Statistics
//
// NewStatsDriver wraps any Querier, counts queries, errors and slow queries
// and logs them with zap.
package sql
