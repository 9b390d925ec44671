// Package introspect reads table descriptions from a live database catalog.
//
// The tables it returns are equivalent to the ones loaded from a schema
// description file, so a database can be used as a generator input, or
// dumped to YAML with load.MarshalSchema and edited by hand:
//
//	drv, err := sql.Open("mysql", dsn)
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//	tables, err := introspect.New(drv).Tables(ctx)
package introspect

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/tmplgen/dialect"
	"github.com/syssam/tmplgen/dialect/sql"
	"github.com/syssam/tmplgen/schema"
	"github.com/syssam/tmplgen/schema/field"
)

// Catalog queries per dialect. Every tables query returns (name, comment)
// and every columns query returns (name, type, nullable, pk, unique, comment).
var (
	tablesQuery = map[string]string{
		dialect.MySQL: "SELECT table_name, table_comment FROM information_schema.tables " +
			"WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE()) AND table_type = 'BASE TABLE' ORDER BY table_name",
		dialect.Postgres: "SELECT t.table_name, COALESCE(obj_description(format('%I.%I', t.table_schema, t.table_name)::regclass, 'pg_class'), '') " +
			"FROM information_schema.tables t " +
			"WHERE t.table_schema = COALESCE(NULLIF($1, ''), CURRENT_SCHEMA()) AND t.table_type = 'BASE TABLE' ORDER BY t.table_name",
		dialect.SQLite: "SELECT name, '' FROM sqlite_master " +
			"WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
	}
	columnsQuery = map[string]string{
		dialect.MySQL: "SELECT column_name, column_type, is_nullable = 'YES', column_key = 'PRI', column_key = 'UNI', column_comment " +
			"FROM information_schema.columns " +
			"WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE()) AND table_name = ? ORDER BY ordinal_position",
		dialect.Postgres: "SELECT c.column_name, c.data_type, c.is_nullable = 'YES', " +
			constraintExists("PRIMARY KEY") + ", " + constraintExists("UNIQUE") + ", " +
			"COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position), '') " +
			"FROM information_schema.columns c " +
			"WHERE c.table_schema = COALESCE(NULLIF($1, ''), CURRENT_SCHEMA()) AND c.table_name = $2 ORDER BY c.ordinal_position",
		dialect.SQLite: `SELECT name, type, "notnull" = 0, pk > 0, 0, '' FROM pragma_table_info(?) ORDER BY cid`,
	}
)

func constraintExists(kind string) string {
	return "EXISTS (SELECT 1 FROM information_schema.table_constraints tc " +
		"JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema " +
		"WHERE tc.constraint_type = '" + kind + "' AND tc.table_schema = c.table_schema AND tc.table_name = c.table_name " +
		"AND kcu.column_name = c.column_name)"
}

// Inspector reads the tables of one database schema.
type Inspector struct {
	drv    sql.Querier
	schema string
	limit  int
	log    *zap.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithSchema sets the database schema to inspect. The default is the
// current schema of the connection. It is ignored by SQLite.
func WithSchema(name string) Option {
	return func(i *Inspector) {
		i.schema = name
	}
}

// WithConcurrency limits the number of tables whose columns are read at
// the same time. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.limit = n
		}
	}
}

// WithLogger sets the logger of the Inspector.
func WithLogger(l *zap.Logger) Option {
	return func(i *Inspector) {
		i.log = l
	}
}

// New returns an Inspector reading the catalog through drv.
func New(drv sql.Querier, opts ...Option) *Inspector {
	i := &Inspector{drv: drv, limit: 4, log: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Tables returns all base tables of the schema in name order.
func (i *Inspector) Tables(ctx context.Context) ([]*schema.Table, error) {
	d := i.drv.Dialect()
	if _, ok := tablesQuery[d]; !ok {
		return nil, fmt.Errorf("introspect: unsupported dialect %q", d)
	}
	tables, err := i.tables(ctx)
	if err != nil {
		return nil, err
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(i.limit)
	for _, t := range tables {
		eg.Go(func() error {
			return i.columns(ctx, t)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	i.log.Debug("schema inspected", zap.String("dialect", d), zap.String("schema", i.schema), zap.Int("tables", len(tables)))
	return tables, nil
}

func (i *Inspector) tables(ctx context.Context) ([]*schema.Table, error) {
	args := []any{i.schema}
	if i.drv.Dialect() == dialect.SQLite {
		args = []any{}
	}
	rows := &sql.Rows{}
	if err := i.drv.Query(ctx, tablesQuery[i.drv.Dialect()], args, rows); err != nil {
		return nil, fmt.Errorf("introspect: list tables: %w", err)
	}
	var tables []*schema.Table
	err := sql.ScanAll(rows, func(s sql.ColumnScanner) error {
		t := &schema.Table{}
		if err := s.Scan(&t.Name, &t.Comment); err != nil {
			return err
		}
		tables = append(tables, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("introspect: scan tables: %w", err)
	}
	return tables, nil
}

// columns fills the columns of t. Each call writes only to its own table.
func (i *Inspector) columns(ctx context.Context, t *schema.Table) error {
	args := []any{i.schema, t.Name}
	if i.drv.Dialect() == dialect.SQLite {
		args = []any{t.Name}
	}
	rows := &sql.Rows{}
	if err := i.drv.Query(ctx, columnsQuery[i.drv.Dialect()], args, rows); err != nil {
		return fmt.Errorf("introspect: columns of %q: %w", t.Name, err)
	}
	err := sql.ScanAll(rows, func(s sql.ColumnScanner) error {
		var (
			c   schema.Column
			typ string
		)
		if err := s.Scan(&c.Name, &typ, &c.Nullable, &c.PrimaryKey, &c.Unique, &c.Comment); err != nil {
			return err
		}
		c.Type = MapType(typ)
		// Key columns never hold NULL, even where the catalog allows it
		// (SQLite INTEGER PRIMARY KEY).
		c.Nullable = c.Nullable && !c.PrimaryKey
		if c.PrimaryKey {
			c.Unique = false
		}
		t.Columns = append(t.Columns, &c)
		return nil
	})
	if err != nil {
		return fmt.Errorf("introspect: scan columns of %q: %w", t.Name, err)
	}
	i.log.Debug("table inspected", zap.String("table", t.Name), zap.Int("columns", len(t.Columns)))
	return nil
}

var typeParams = regexp.MustCompile(`\(.*\)`)

// MapType maps a catalog column type, like "varchar(255)", "int unsigned"
// or "timestamp without time zone", to a value type. Unknown types map to
// field.TypeString.
func MapType(sqlType string) field.Type {
	s := strings.ToLower(strings.TrimSpace(sqlType))
	// MySQL booleans.
	if s == "tinyint(1)" || s == "bit(1)" {
		return field.TypeBool
	}
	s = typeParams.ReplaceAllString(s, "")
	if strings.HasPrefix(s, "interval") {
		return field.TypeString
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "unsigned"))
	if t, err := field.ParseType(s); err == nil {
		return t
	}
	switch {
	case strings.Contains(s, "int"):
		return field.TypeInt
	case strings.Contains(s, "char"), strings.Contains(s, "text"), strings.Contains(s, "clob"):
		return field.TypeString
	case strings.Contains(s, "real"), strings.Contains(s, "floa"), strings.Contains(s, "doub"),
		strings.Contains(s, "numeric"), strings.Contains(s, "decimal"):
		return field.TypeFloat
	case strings.Contains(s, "bool"):
		return field.TypeBool
	case strings.Contains(s, "time"), strings.Contains(s, "date"):
		return field.TypeTime
	case strings.Contains(s, "blob"), strings.Contains(s, "binary"), strings.Contains(s, "bytea"):
		return field.TypeBytes
	default:
		return field.TypeString
	}
}
