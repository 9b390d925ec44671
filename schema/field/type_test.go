package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syssam/tmplgen/schema/field"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		name     string
		expected field.Type
	}{
		{"int", field.TypeInt},
		{"INTEGER", field.TypeInt},
		{" bigint ", field.TypeInt},
		{"varchar", field.TypeString},
		{"text", field.TypeString},
		{"double", field.TypeFloat},
		{"numeric", field.TypeFloat},
		{"boolean", field.TypeBool},
		{"timestamp", field.TypeTime},
		{"blob", field.TypeBytes},
		{"bytea", field.TypeBytes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := field.ParseType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, typ)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		typ, err := field.ParseType("geometry")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "geometry")
		assert.Equal(t, field.TypeInvalid, typ)
	})
}

func TestType(t *testing.T) {
	assert.Equal(t, "int", field.TypeInt.String())
	assert.Equal(t, "int64", field.TypeInt.GoType())
	assert.Equal(t, "time.Time", field.TypeTime.GoType())
	assert.Equal(t, "[]byte", field.TypeBytes.GoType())
	assert.Equal(t, "invalid", field.Type(200).String())
	assert.True(t, field.TypeFloat.Valid())
	assert.False(t, field.TypeInvalid.Valid())
	assert.True(t, field.TypeFloat.Numeric())
	assert.False(t, field.TypeString.Numeric())
}

func TestTypeYAML(t *testing.T) {
	var v struct {
		Types []field.Type `yaml:"types"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("types: [int, varchar, datetime]"), &v))
	assert.Equal(t, []field.Type{field.TypeInt, field.TypeString, field.TypeTime}, v.Types)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "types:\n    - int\n    - string\n    - time\n", string(out))

	err = yaml.Unmarshal([]byte("types: [point]"), &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}
