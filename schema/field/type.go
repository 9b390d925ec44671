package field

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// A Type represents a column value type.
type Type uint8

// List of value types.
const (
	TypeInvalid Type = iota
	TypeInt
	TypeString
	TypeFloat
	TypeBool
	TypeTime
	TypeBytes
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeInt:     "int",
	TypeString:  "string",
	TypeFloat:   "float",
	TypeBool:    "bool",
	TypeTime:    "time",
	TypeBytes:   "bytes",
}

var goTypes = [...]string{
	TypeInvalid: "invalid",
	TypeInt:     "int64",
	TypeString:  "string",
	TypeFloat:   "float64",
	TypeBool:    "bool",
	TypeTime:    "time.Time",
	TypeBytes:   "[]byte",
}

// aliases maps lower-cased type names, as found in schema files or
// database catalogs, to their value type.
var aliases = map[string]Type{
	"int":       TypeInt,
	"integer":   TypeInt,
	"int64":     TypeInt,
	"bigint":    TypeInt,
	"smallint":  TypeInt,
	"mediumint": TypeInt,
	"serial":    TypeInt,
	"bigserial": TypeInt,
	"string":    TypeString,
	"text":      TypeString,
	"varchar":   TypeString,
	"char":      TypeString,
	"uuid":      TypeString,
	"float":     TypeFloat,
	"float64":   TypeFloat,
	"double":    TypeFloat,
	"real":      TypeFloat,
	"decimal":   TypeFloat,
	"numeric":   TypeFloat,
	"bool":      TypeBool,
	"boolean":   TypeBool,
	"time":      TypeTime,
	"date":      TypeTime,
	"datetime":  TypeTime,
	"timestamp": TypeTime,
	"bytes":     TypeBytes,
	"blob":      TypeBytes,
	"bytea":     TypeBytes,
	"binary":    TypeBytes,
}

// String returns the schema name of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// GoType returns the Go type used for values of t.
func (t Type) GoType() string {
	if t < endTypes {
		return goTypes[t]
	}
	return goTypes[TypeInvalid]
}

// Valid reports if the given type is a known type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeFloat
}

// ParseType returns the type for the given name or alias.
func ParseType(name string) (Type, error) {
	if t, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t, nil
	}
	return TypeInvalid, fmt.Errorf("field: unknown type %q", name)
}

// MarshalYAML implements yaml.Marshaler.
func (t Type) MarshalYAML() (any, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("field: cannot marshal invalid type %d", t)
	}
	return t.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	typ, err := ParseType(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = typ
	return nil
}
