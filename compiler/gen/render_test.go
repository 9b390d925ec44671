package gen

import (
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tmplgen/schema"
	"github.com/syssam/tmplgen/schema/field"
)

func builtin(t *testing.T, name string) *Descriptor {
	t.Helper()
	d, err := Resolve(name, []Source{Builtin()})
	require.NoError(t, err)
	return d
}

func body(name, text string) *Descriptor {
	d, err := parseTemplate(name, "test", []byte(strings.TrimPrefix(dedent.Dedent(text), "\n")))
	if err != nil {
		panic(err)
	}
	return d
}

func TestRender_ProjectEdit(t *testing.T) {
	content, settings, err := Render(builtin(t, "edit"), projectTable())
	require.NoError(t, err)

	assert.Equal(t, "forms", settings.Directory)
	assert.Equal(t, "project_edit.go", settings.FileName)
	assert.Equal(t, AlwaysRegenerate, settings.Policy)
	assert.Empty(t, settings.DirSuffix)

	assert.Contains(t, content, DefaultHeader)
	assert.Contains(t, content, "package forms")
	assert.Contains(t, content, "type ProjectEditForm struct")
	assert.Contains(t, content, `{"Name", "Name", "TextInput"}`)
	assert.Contains(t, content, `{"Budget", "Budget", "NumberInput"}`)
	assert.Contains(t, content, "func LoadProject(ctx context.Context, db *sql.DB, id int64) (*ProjectEditForm, error)")
	assert.Contains(t, content, "func LoadProjectOrNew(ctx context.Context, db *sql.DB, id *int64) (*ProjectEditForm, error)")
	assert.Contains(t, content, "if id == nil {")
	assert.NotContains(t, content, "incomplete primary key")
	// The primary key is loaded but not editable.
	assert.NotContains(t, content, `case "ID":`)
	assert.Contains(t, content, `case "Budget":`)
	assert.NotContains(t, content, `"time"`)
}

func TestRender_CompositeKeyEdit(t *testing.T) {
	content, _, err := Render(builtin(t, "edit"), membershipTable())
	require.NoError(t, err)
	assert.Contains(t, content, "func LoadMembership(ctx context.Context, db *sql.DB, userID int64, tenantID int64)")
	assert.Contains(t, content, "userID *int64, tenantID *int64")
	assert.Contains(t, content, "if userID == nil && tenantID == nil {")
	assert.Contains(t, content, "if userID == nil || tenantID == nil {")
	assert.Contains(t, content, "return LoadMembership(ctx, db, *userID, *tenantID)")
	assert.Contains(t, content, `"time"`)
}

func TestRender_List(t *testing.T) {
	content, settings, err := Render(builtin(t, "list"), projectTable(), WithDialect("postgres"))
	require.NoError(t, err)
	assert.Equal(t, "project_list.go", settings.FileName)
	assert.Contains(t, content, "func ListProjects(ctx context.Context, db *sql.DB, limit, offset int) ([]*ProjectListRow, error)")
	assert.Contains(t, content, `ORDER BY \"id\" LIMIT $1 OFFSET $2`)
	assert.Contains(t, content, "var projects []*ProjectListRow")
}

func TestRender_GraphQL(t *testing.T) {
	content, settings, err := Render(builtin(t, "graphql"), projectTable())
	require.NoError(t, err)
	assert.Equal(t, "graphql", settings.Directory)
	assert.Equal(t, "project.graphql", settings.FileName)
	assert.Contains(t, content, "type Project {")
	assert.Contains(t, content, "budget: Float\n")
	assert.Contains(t, content, "project(id: ID!): Project")
	assert.Contains(t, content, "saveProject(id: ID, input: ProjectInput!): Project!")

	t.Run("invalid schema", func(t *testing.T) {
		d := body("broken", `
			---
			category: graphql
			---
			type {{ .Name }} { id: Missing }
			`)
		_, _, err := Render(d, projectTable())
		require.Error(t, err)
		var re *TemplateRenderError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "output", re.Field)
	})
}

func TestRender_Model(t *testing.T) {
	t.Run("generate once in models", func(t *testing.T) {
		content, settings, err := Render(builtin(t, "model"), projectTable(), WithPackage("example.com/app"))
		require.NoError(t, err)
		assert.Equal(t, "models", settings.Directory)
		assert.Equal(t, "project.go", settings.FileName)
		assert.Equal(t, GenerateOnce, settings.Policy)
		assert.Contains(t, content, `"example.com/app/models/generated"`)
		assert.NotContains(t, content, "DO NOT EDIT")
	})

	t.Run("package path is required", func(t *testing.T) {
		_, _, err := Render(builtin(t, "model"), projectTable(), WithRoot(t.TempDir()))
		require.Error(t, err)
		var re *TemplateRenderError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "model", re.Template)
		assert.Contains(t, re.Field, "required")
		assert.Contains(t, err.Error(), "package path is required")
	})
}

func TestRender_Settings(t *testing.T) {
	t.Run("front matter overrides category", func(t *testing.T) {
		d := body("admin", `
			---
			category: edit
			directory: admin
			filename: "{{ snake .Name }}_admin.go"
			---
			package {{ pkg }}
			`)
		content, settings, err := Render(d, projectTable())
		require.NoError(t, err)
		assert.Equal(t, "admin", settings.Directory)
		assert.Equal(t, "project_admin.go", settings.FileName)
		assert.Equal(t, "package admin\n", content)
	})

	t.Run("target at project root", func(t *testing.T) {
		d := body("main", `
			---
			category: edit
			directory: ""
			filename: "{{ snake .Name }}.go"
			---
			package {{ pkg }}
			`)
		content, settings, err := Render(d, projectTable())
		require.NoError(t, err)
		assert.Equal(t, "project.go", settings.Rel())
		assert.Equal(t, "package main\n", content)
	})

	t.Run("body functions override front matter", func(t *testing.T) {
		d := body("notes", `
			---
			directory: drafts
			policy: always-regenerate
			---
			{{- target "docs" }}{{ dirSuffix "tables" }}{{ generateOnce }}{{ filename "notes.md" -}}
			# {{ .Label }}
			`)
		content, settings, err := Render(d, projectTable())
		require.NoError(t, err)
		assert.Equal(t, TargetSettings{Directory: "docs", DirSuffix: "tables", FileName: "notes.md", Policy: GenerateOnce}, settings)
		assert.Equal(t, "# Project\n", content)
	})

	t.Run("settings do not leak between renders", func(t *testing.T) {
		d := body("notes", `{{ if eq .Name "Project" }}{{ target "special" }}{{ policy "once" }}{{ end }}{{ .Name }}`)
		_, first, err := Render(d, projectTable())
		require.NoError(t, err)
		assert.Equal(t, "special", first.Directory)
		assert.Equal(t, GenerateOnce, first.Policy)

		_, second, err := Render(d, membershipTable())
		require.NoError(t, err)
		assert.Equal(t, "custom", second.Directory)
		assert.Equal(t, AlwaysRegenerate, second.Policy)
		assert.Equal(t, "membership_notes.txt", second.FileName)

		_, third, err := Render(builtin(t, "edit"), projectTable())
		require.NoError(t, err)
		assert.Equal(t, "forms", third.Directory)
	})

	t.Run("custom category", func(t *testing.T) {
		content, settings, err := Render(body("summary", "{{ .Plural }}"), projectTable())
		require.NoError(t, err)
		assert.Equal(t, "custom", settings.Directory)
		assert.Equal(t, "project_summary.txt", settings.FileName)
		assert.Equal(t, "Projects", content)
	})

	t.Run("configured category", func(t *testing.T) {
		d := body("card", "package {{ pkg }}\n")
		content, settings, err := Render(d, projectTable(),
			WithCategories(&Category{Name: "card", Suffix: "_card.go", Directory: "ui", DirSuffix: "cards"}))
		require.NoError(t, err)
		assert.Equal(t, "project_card.go", settings.FileName)
		assert.Equal(t, "package cards\n", content)
	})

	t.Run("path escaping the root", func(t *testing.T) {
		d := body("notes", `{{ target "../outside" }}x`)
		_, _, err := Render(d, projectTable())
		require.Error(t, err)
		var re *TemplateRenderError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "filename", re.Field)
	})

	t.Run("invalid policy", func(t *testing.T) {
		_, _, err := Render(body("notes", `{{ policy "sometimes" }}`), projectTable())
		assert.True(t, IsRenderError(err))
	})
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"unknown node field", "{{ .Nope }}", "Nope"},
		{"unknown column field", "{{ range .Columns }}{{ .Bogus }}{{ end }}", "Bogus"},
		{"unknown function", "{{ nope .Name }}", "nope"},
		{"syntax error", "{{ .Name ", "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Render(body("broken", tt.body), projectTable())
			require.Error(t, err)
			var re *TemplateRenderError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, "broken", re.Template)
			assert.Equal(t, tt.field, re.Field)
			assert.ErrorIs(t, err, ErrTemplateRender)
		})
	}

	t.Run("invalid go output", func(t *testing.T) {
		d := body("edit", "package {{ pkg }}\nfunc {")
		_, _, err := Render(d, projectTable())
		var re *TemplateRenderError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "output", re.Field)

		content, _, err := Render(d, projectTable(), WithFormat(false))
		require.NoError(t, err)
		assert.Equal(t, "package forms\nfunc {", content)
	})

	t.Run("invalid class name", func(t *testing.T) {
		tbl := projectTable()
		tbl.ClassName = "Project Plan"
		_, _, err := Render(builtin(t, "edit"), tbl)
		assert.True(t, IsInvalidIdentifier(err))
	})

	t.Run("table without primary key", func(t *testing.T) {
		auditLog := &schema.Table{Name: "audit_log", Columns: []*schema.Column{{Name: "msg", Type: field.TypeString}}}
		for _, name := range []string{"edit", "list", "graphql"} {
			content, _, err := Render(builtin(t, name), auditLog)
			assert.True(t, IsMissingPrimaryKey(err), name)
			assert.Empty(t, content, name)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		d := body("notes", "---\ncategory: widget\n---\nx")
		_, _, err := Render(d, projectTable())
		var re *TemplateRenderError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "category", re.Field)
	})
}

func TestRender_Native(t *testing.T) {
	n := stubNative{name: "stub", category: CategoryEdit, body: "package forms\n\n// "}
	d, err := Resolve("stub", []Source{Builtin(n)})
	require.NoError(t, err)
	content, settings, err := Render(d, &schema.Table{Name: "task", Columns: []*schema.Column{{Name: "id", Type: field.TypeInt, PrimaryKey: true}}})
	require.NoError(t, err)
	assert.Equal(t, "task_edit.go", settings.FileName)
	assert.Equal(t, "package forms\n\n// Task\n", content)
}
