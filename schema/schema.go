package schema

import (
	"fmt"
	"reflect"

	"github.com/syssam/tmplgen/schema/field"
)

type (
	// Table describes a database table.
	Table struct {
		// Name is the logical (database) name of the table.
		Name string `yaml:"name"`
		// ClassName is the type name used in generated code.
		ClassName string `yaml:"class,omitempty"`
		// Columns in declaration order.
		Columns []*Column `yaml:"columns"`
		// Comment of the table, if any.
		Comment string `yaml:"comment,omitempty"`
	}

	// Column describes a table column.
	Column struct {
		// Name is the column name in the database.
		Name string `yaml:"name"`
		// Type is the semantic value type of the column.
		Type field.Type `yaml:"type"`
		// Nullable indicates the column accepts NULL.
		Nullable bool `yaml:"nullable,omitempty"`
		// PrimaryKey marks the column as part of the primary key.
		PrimaryKey bool `yaml:"pk,omitempty"`
		// Unique marks a single-column unique constraint.
		Unique bool `yaml:"unique,omitempty"`
		// Comment of the column, if any.
		Comment string `yaml:"comment,omitempty"`
	}
)

// PrimaryKeys returns the primary-key columns in declaration order.
func (t *Table) PrimaryKeys() []*Column {
	var pks []*Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pks = append(pks, c)
		}
	}
	return pks
}

// NonPrimaryKeys returns all columns that are not part of the primary key.
func (t *Table) NonPrimaryKeys() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if !c.PrimaryKey {
			cols = append(cols, c)
		}
	}
	return cols
}

// HasCompositeKey reports if the table primary key spans several columns.
func (t *Table) HasCompositeKey() bool {
	return len(t.PrimaryKeys()) > 1
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// IsNewRecord reports if a load call with the given primary-key values
// refers to a record that does not exist yet. The values must be given in
// PrimaryKeys order. A record is new only when every value is absent: nil or
// a nil pointer. It panics if the number of values does not match the number
// of primary-key columns.
func (t *Table) IsNewRecord(pk ...any) bool {
	if n := len(t.PrimaryKeys()); n != len(pk) {
		panic(fmt.Sprintf("schema: table %q expects %d primary-key values, got %d", t.Name, n, len(pk)))
	}
	for _, v := range pk {
		if !absent(v) {
			return false
		}
	}
	return true
}

func absent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// GoType returns the Go type for values of the column. Nullable columns
// are represented as pointers.
func (c *Column) GoType() string {
	if c.Nullable {
		return "*" + c.Type.GoType()
	}
	return c.Type.GoType()
}
