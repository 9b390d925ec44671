// Package field defines the semantic value types a table column can hold.
//
// The set is intentionally small and maps onto every supported database:
//
//	field.TypeInt     // int, integer, bigint, serial ...
//	field.TypeString  // varchar, text, char ...
//	field.TypeFloat   // float, double, decimal, numeric ...
//	field.TypeBool    // bool, boolean
//	field.TypeTime    // date, datetime, timestamp ...
//	field.TypeBytes   // blob, bytea, binary ...
//
// Types are written by name in schema description files and are resolved
// with ParseType, which also accepts the common SQL aliases above.
package field
