package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tmplgen/dialect"
	"github.com/syssam/tmplgen/schema"
	"github.com/syssam/tmplgen/schema/field"
)

func projectTable() *schema.Table {
	return &schema.Table{
		Name: "project",
		Columns: []*schema.Column{
			{Name: "id", Type: field.TypeInt, PrimaryKey: true},
			{Name: "name", Type: field.TypeString},
			{Name: "budget", Type: field.TypeFloat, Nullable: true},
		},
	}
}

func membershipTable() *schema.Table {
	return &schema.Table{
		Name: "memberships",
		Columns: []*schema.Column{
			{Name: "user_id", Type: field.TypeInt, PrimaryKey: true},
			{Name: "tenant_id", Type: field.TypeInt, PrimaryKey: true},
			{Name: "role", Type: field.TypeString},
			{Name: "joined_at", Type: field.TypeTime, Nullable: true},
		},
	}
}

func TestNewNode(t *testing.T) {
	c := MustNewConfig(WithPackage("example.com/app"))

	t.Run("class name from table name", func(t *testing.T) {
		n, err := NewNode(c, membershipTable())
		require.NoError(t, err)
		assert.Equal(t, "Membership", n.Name)
		assert.Equal(t, "memberships", n.TableName())
		assert.Equal(t, "example.com/app", n.Package)
		assert.Equal(t, DefaultHeader, n.Header)
		require.Len(t, n.Columns, 4)
		assert.Equal(t, "UserID", n.Columns[0].StructField)
		assert.Equal(t, "userID", n.Columns[0].Var)
		assert.Equal(t, "JoinedAt", n.Columns[3].StructField)
	})

	t.Run("explicit class name", func(t *testing.T) {
		tbl := projectTable()
		tbl.ClassName = "ProjectRecord"
		n, err := NewNode(c, tbl)
		require.NoError(t, err)
		assert.Equal(t, "ProjectRecord", n.Name)
	})

	t.Run("invalid identifiers", func(t *testing.T) {
		tests := []struct {
			name  string
			table *schema.Table
			kind  string
		}{
			{"table", &schema.Table{Name: "bad table"}, "table"},
			{"empty table", &schema.Table{}, "table"},
			{"class", &schema.Table{Name: "orders", ClassName: "9Orders"}, "class"},
			{"column", &schema.Table{Name: "orders", Columns: []*schema.Column{{Name: "total-amount"}}}, "column"},
			{"unicode column", &schema.Table{Name: "orders", Columns: []*schema.Column{{Name: "größe"}}}, "column"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewNode(c, tt.table)
				require.Error(t, err)
				var ie *InvalidIdentifierError
				require.ErrorAs(t, err, &ie)
				assert.Equal(t, tt.kind, ie.Kind)
			})
		}
	})
}

func TestNode_Names(t *testing.T) {
	n, err := NewNode(MustNewConfig(), projectTable())
	require.NoError(t, err)
	assert.Equal(t, "Project", n.Name)
	assert.Equal(t, "p", n.Receiver())
	assert.Equal(t, "project", n.Var())
	assert.Equal(t, "Projects", n.Plural())
	assert.Equal(t, "projects", n.PluralVar())
	assert.Equal(t, "Project", n.Label())
	assert.Equal(t, "Projects", n.PluralLabel())

	person, err := NewNode(MustNewConfig(), &schema.Table{Name: "person", Columns: []*schema.Column{{Name: "id", Type: field.TypeInt, PrimaryKey: true}}})
	require.NoError(t, err)
	assert.Equal(t, "People", person.Plural())
	assert.Equal(t, "people", person.PluralVar())
}

func TestNode_PrimaryKey(t *testing.T) {
	t.Run("single key", func(t *testing.T) {
		n, err := NewNode(MustNewConfig(), projectTable())
		require.NoError(t, err)
		assert.False(t, n.HasCompositeKey())
		assert.Len(t, n.PrimaryKeys(), 1)
		assert.Len(t, n.Fields(), 2)
		assert.Equal(t, "id int64", n.PKParams())
		assert.Equal(t, "id *int64", n.PKNullableParams())
		assert.Equal(t, "id", n.PKArgs())
		assert.Equal(t, "*id", n.PKDerefArgs())
		assert.Equal(t, "id == nil", n.PKNewCheck())
		assert.Equal(t, `"id" = ?`, n.PKWhere())
		assert.False(t, n.HasTime())
	})

	t.Run("composite key", func(t *testing.T) {
		n, err := NewNode(MustNewConfig(WithDialect(dialect.Postgres)), membershipTable())
		require.NoError(t, err)
		assert.True(t, n.HasCompositeKey())
		assert.Equal(t, "userID int64, tenantID int64", n.PKParams())
		assert.Equal(t, "userID *int64, tenantID *int64", n.PKNullableParams())
		assert.Equal(t, "userID, tenantID", n.PKArgs())
		assert.Equal(t, "*userID, *tenantID", n.PKDerefArgs())
		assert.Equal(t, "userID == nil && tenantID == nil", n.PKNewCheck())
		assert.Equal(t, "userID == nil || tenantID == nil", n.PKAnyNil())
		assert.Equal(t, `"user_id" = $1 AND "tenant_id" = $2`, n.PKWhere())
		assert.Equal(t, `"user_id", "tenant_id"`, n.PKOrder())
		assert.Equal(t, "$3", n.Placeholder(3))
		assert.True(t, n.HasTime())
	})

	t.Run("mysql quoting", func(t *testing.T) {
		n, err := NewNode(MustNewConfig(WithDialect(dialect.MySQL)), projectTable())
		require.NoError(t, err)
		assert.Equal(t, "`id`, `name`, `budget`", n.SelectColumns())
		assert.Equal(t, "`project`", n.QuotedTable())
	})

	t.Run("no key", func(t *testing.T) {
		_, err := NewNode(MustNewConfig(), &schema.Table{Name: "audit_log", Columns: []*schema.Column{{Name: "msg", Type: field.TypeString}}})
		require.Error(t, err)
		var pe *MissingPrimaryKeyError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "audit_log", pe.Table)
		assert.ErrorIs(t, err, ErrMissingPrimaryKey)
		assert.EqualError(t, err, `tmplgen: table "audit_log" has no primary key`)
	})
}

func TestColumn_Helpers(t *testing.T) {
	n, err := NewNode(MustNewConfig(), membershipTable())
	require.NoError(t, err)
	tests := []struct {
		col      *Column
		label    string
		base     string
		graphql  string
		control  string
		valueTyp string
	}{
		{n.Columns[0], "User ID", "int64", "ID!", "NumberInput", "int64"},
		{n.Columns[2], "Role", "string", "String!", "TextInput", "string"},
		{n.Columns[3], "Joined At", "time.Time", "Time", "DateTimeInput", "*time.Time"},
	}
	for _, tt := range tests {
		t.Run(tt.col.Name, func(t *testing.T) {
			assert.Equal(t, tt.label, tt.col.Label())
			assert.Equal(t, tt.base, tt.col.BaseType())
			assert.Equal(t, tt.graphql, tt.col.GraphQLType())
			assert.Equal(t, tt.control, tt.col.FormControl())
			assert.Equal(t, tt.valueTyp, tt.col.GoType())
		})
	}
}
