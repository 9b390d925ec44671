package gen

import (
	"strings"

	"github.com/syssam/tmplgen/dialect"
	"github.com/syssam/tmplgen/schema"
	"github.com/syssam/tmplgen/schema/field"
)

type (
	// Node is the data a template is executed with: one table plus the
	// names derived from it.
	Node struct {
		// Table is the underlying table metadata.
		Table *schema.Table
		// Name is the class name of the table (e.g. Project).
		Name string
		// Package is the Go import path of the project root.
		Package string
		// Header is the generated file header.
		Header string
		// Dialect of the SQL in generated code.
		Dialect string
		// Columns of the table in declaration order.
		Columns []*Column
	}

	// Column wraps a column of a node.
	Column struct {
		*schema.Column
		// StructField is the Go field name of the column (e.g. TenantID).
		StructField string
		// Var is the local variable name of the column (e.g. tenantID).
		Var string
	}
)

// NewNode creates the template data of a table. It fails with an
// InvalidIdentifierError if the table, class or a column name is outside
// the identifier grammar, and with a MissingPrimaryKeyError if no column
// is part of the primary key.
func NewNode(c *Config, t *schema.Table) (*Node, error) {
	if !ValidIdentifier(t.Name) {
		return nil, NewInvalidIdentifierError("table", t.Name, t.Name)
	}
	name := t.ClassName
	if name == "" {
		name = pascal(Singularize(t.Name))
	}
	if !ValidIdentifier(name) {
		return nil, NewInvalidIdentifierError("class", t.Name, name)
	}
	n := &Node{
		Table:   t,
		Name:    name,
		Package: c.Package,
		Header:  c.Header,
		Dialect: c.Dialect,
		Columns: make([]*Column, 0, len(t.Columns)),
	}
	for _, col := range t.Columns {
		if !ValidIdentifier(col.Name) {
			return nil, NewInvalidIdentifierError("column", t.Name, col.Name)
		}
		n.Columns = append(n.Columns, &Column{
			Column:      col,
			StructField: pascal(col.Name),
			Var:         camel(col.Name),
		})
	}
	if len(n.PrimaryKeys()) == 0 {
		return nil, NewMissingPrimaryKeyError(t.Name)
	}
	return n, nil
}

// TableName returns the database name of the table.
func (n *Node) TableName() string { return n.Table.Name }

// Receiver returns the receiver name of the node type.
func (n *Node) Receiver() string { return receiver(n.Name) }

// Var returns the local variable name of a single record (e.g. project).
func (n *Node) Var() string { return camel(snake(n.Name)) }

// Plural returns the plural class name (e.g. Projects).
func (n *Node) Plural() string { return Pluralize(n.Name) }

// PluralVar returns the local variable name of a record list (e.g. projects).
func (n *Node) PluralVar() string { return camel(snake(n.Plural())) }

// Label returns the display name of a single record (e.g. Project Budget).
func (n *Node) Label() string { return DisplayName(n.Name) }

// PluralLabel returns the display name of a record list.
func (n *Node) PluralLabel() string { return DisplayName(n.Plural()) }

// PrimaryKeys returns the primary-key columns in declaration order.
func (n *Node) PrimaryKeys() []*Column {
	var pks []*Column
	for _, c := range n.Columns {
		if c.PrimaryKey {
			pks = append(pks, c)
		}
	}
	return pks
}

// Fields returns the non primary-key columns.
func (n *Node) Fields() []*Column {
	var fields []*Column
	for _, c := range n.Columns {
		if !c.PrimaryKey {
			fields = append(fields, c)
		}
	}
	return fields
}

// HasCompositeKey reports if the primary key spans several columns.
func (n *Node) HasCompositeKey() bool { return len(n.PrimaryKeys()) > 1 }

// HasTime reports if any column holds a time value.
func (n *Node) HasTime() bool {
	for _, c := range n.Columns {
		if c.Type == field.TypeTime {
			return true
		}
	}
	return false
}

// PKParams returns the primary-key parameter list of load functions:
//
//	id int64, tenantID int64
func (n *Node) PKParams() string {
	return n.pkJoin(func(c *Column) string { return c.Var + " " + c.Type.GoType() })
}

// PKNullableParams returns the primary-key parameter list of the "is new"
// variants, where an absent value is nil:
//
//	id *int64, tenantID *int64
func (n *Node) PKNullableParams() string {
	return n.pkJoin(func(c *Column) string { return c.Var + " *" + c.Type.GoType() })
}

// PKArgs returns the primary-key argument list: id, tenantID.
func (n *Node) PKArgs() string {
	return n.pkJoin(func(c *Column) string { return c.Var })
}

// PKDerefArgs returns the dereferenced primary-key argument list: *id, *tenantID.
func (n *Node) PKDerefArgs() string {
	return n.pkJoin(func(c *Column) string { return "*" + c.Var })
}

// PKNewCheck returns the condition that holds when all primary-key
// parameters are absent:
//
//	id == nil && tenantID == nil
func (n *Node) PKNewCheck() string {
	pks := n.PrimaryKeys()
	conds := make([]string, len(pks))
	for i, c := range pks {
		conds[i] = c.Var + " == nil"
	}
	return strings.Join(conds, " && ")
}

// PKAnyNil returns the condition that holds when some primary-key
// parameter is absent: id == nil || tenantID == nil.
func (n *Node) PKAnyNil() string {
	pks := n.PrimaryKeys()
	conds := make([]string, len(pks))
	for i, c := range pks {
		conds[i] = c.Var + " == nil"
	}
	return strings.Join(conds, " || ")
}

// PKWhere returns the WHERE condition matching the primary key.
func (n *Node) PKWhere() string {
	pks := n.PrimaryKeys()
	conds := make([]string, len(pks))
	for i, c := range pks {
		conds[i] = dialect.Quote(n.Dialect, c.Name) + " = " + dialect.Placeholder(n.Dialect, i+1)
	}
	return strings.Join(conds, " AND ")
}

// SelectColumns returns the quoted column list of the table.
func (n *Node) SelectColumns() string {
	cols := make([]string, len(n.Columns))
	for i, c := range n.Columns {
		cols[i] = dialect.Quote(n.Dialect, c.Name)
	}
	return strings.Join(cols, ", ")
}

// PKOrder returns the quoted primary-key columns for ORDER BY clauses.
func (n *Node) PKOrder() string {
	pks := n.PrimaryKeys()
	cols := make([]string, len(pks))
	for i, c := range pks {
		cols[i] = dialect.Quote(n.Dialect, c.Name)
	}
	return strings.Join(cols, ", ")
}

// Placeholder returns the i-th (1-based) bind parameter of the dialect.
func (n *Node) Placeholder(i int) string { return dialect.Placeholder(n.Dialect, i) }

// QuotedTable returns the quoted table name.
func (n *Node) QuotedTable() string { return dialect.Quote(n.Dialect, n.Table.Name) }

func (n *Node) pkJoin(f func(*Column) string) string {
	pks := n.PrimaryKeys()
	parts := make([]string, len(pks))
	for i, c := range pks {
		parts[i] = f(c)
	}
	return strings.Join(parts, ", ")
}

// Label returns the display name of the column (e.g. Budget Amount).
func (c *Column) Label() string { return DisplayName(c.Name) }

// BaseType returns the Go type of the column ignoring nullability.
func (c *Column) BaseType() string { return c.Type.GoType() }

// GraphQLType returns the GraphQL type of the column.
func (c *Column) GraphQLType() string {
	var t string
	switch {
	case c.PrimaryKey && c.Type == field.TypeInt:
		t = "ID"
	case c.Type == field.TypeInt:
		t = "Int"
	case c.Type == field.TypeFloat:
		t = "Float"
	case c.Type == field.TypeBool:
		t = "Boolean"
	case c.Type == field.TypeTime:
		t = "Time"
	default:
		t = "String"
	}
	if !c.Nullable {
		t += "!"
	}
	return t
}

// FormControl returns the name of the form control editing the column.
func (c *Column) FormControl() string {
	switch c.Type {
	case field.TypeBool:
		return "Checkbox"
	case field.TypeInt, field.TypeFloat:
		return "NumberInput"
	case field.TypeTime:
		return "DateTimeInput"
	case field.TypeBytes:
		return "FileInput"
	default:
		return "TextInput"
	}
}
