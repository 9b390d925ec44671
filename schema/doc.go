// Package schema holds the table metadata the generator renders templates
// against.
//
// A Table is an immutable description of one database table: its logical
// name, the class name used by generated code and its ordered columns.
// Tables are produced by the schema description loader (compiler/load) or by
// database introspection (dialect/introspect) and are never modified by the
// generator.
//
//	t := &schema.Table{
//	    Name:      "project",
//	    ClassName: "Project",
//	    Columns: []*schema.Column{
//	        {Name: "id", Type: field.TypeInt, PrimaryKey: true},
//	        {Name: "name", Type: field.TypeString},
//	        {Name: "budget", Type: field.TypeFloat, Nullable: true},
//	    },
//	}
package schema
