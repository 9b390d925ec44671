package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tmplgen/compiler/gen"
	"github.com/syssam/tmplgen/compiler/load"
	"github.com/syssam/tmplgen/dialect/sql"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const projectSchema = `tables:
  - name: project
    columns:
      - {name: id, type: int, pk: true}
      - {name: name, type: string}
      - {name: budget, type: float, nullable: true}
`

// newProject creates a project root with a go.mod and a schema file.
func newProject(t *testing.T) (root, schemaFile string) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.24\n"), 0o644))
	schemaFile = filepath.Join(root, "schema.yaml")
	require.NoError(t, os.WriteFile(schemaFile, []byte(projectSchema), 0o644))
	return root, schemaFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestGenerate(t *testing.T) {
	root, schemaFile := newProject(t)

	out, err := execute(t, "generate", "--root", root, "--schema", schemaFile)
	require.NoError(t, err, out)
	assert.Contains(t, out, "5 written, 0 skipped, 0 failed, 0 stale")
	assert.Contains(t, out, filepath.Join(root, "forms", "project_edit.go"))
	edit, err := os.ReadFile(filepath.Join(root, "forms", "project_edit.go"))
	require.NoError(t, err)
	assert.Contains(t, string(edit), "Budget")
	assert.FileExists(t, filepath.Join(root, "models", "project.go"))
	assert.FileExists(t, filepath.Join(root, "graphql", "project.graphql"))
	assert.NoFileExists(t, filepath.Join(root, gen.LockFile))

	out, err = execute(t, "generate", "--root", root, "--schema", schemaFile)
	require.NoError(t, err, out)
	assert.Contains(t, out, "4 written, 1 skipped, 0 failed, 0 stale")
	assert.Contains(t, out, "skipped-exists")
	assert.Contains(t, out, "(unchanged)")
}

func TestGenerate_Templates(t *testing.T) {
	root, schemaFile := newProject(t)

	out, err := execute(t, "generate", "--root", root, "--schema", schemaFile, "-t", "edit", "-t", "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 written, 0 skipped, 0 failed, 0 stale")
	assert.NoFileExists(t, filepath.Join(root, "models", "project.go"))

	t.Run("stale and prune", func(t *testing.T) {
		renamed := strings.ReplaceAll(projectSchema, "name: project", "name: task")
		require.NoError(t, os.WriteFile(schemaFile, []byte(renamed), 0o644))
		out, err := execute(t, "generate", "--root", root, "--schema", schemaFile, "-t", "edit", "-t", "list", "--prune")
		require.NoError(t, err, out)
		assert.Contains(t, out, "2 written, 0 skipped, 0 failed, 2 stale")
		assert.Contains(t, out, "pruned forms/project_edit.go")
		assert.NoFileExists(t, filepath.Join(root, "forms", "project_edit.go"))
		assert.NoFileExists(t, filepath.Join(root, "forms", "project_list.go"))
		assert.FileExists(t, filepath.Join(root, "forms", "task_edit.go"))
	})
}

func TestGenerate_Failures(t *testing.T) {
	root, schemaFile := newProject(t)

	out, err := execute(t, "generate", "--root", root, "--schema", schemaFile, "-t", "edit", "-t", "nope")
	require.Error(t, err)
	assert.EqualError(t, err, "1 of 2 pairs failed")
	assert.Contains(t, out, "1 written, 0 skipped, 1 failed, 0 stale")
	assert.Contains(t, out, `"nope"`)
	assert.FileExists(t, filepath.Join(root, "forms", "project_edit.go"))

	t.Run("missing schema", func(t *testing.T) {
		_, err := execute(t, "generate", "--root", root, "--schema", filepath.Join(root, "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid dialect", func(t *testing.T) {
		_, err := execute(t, "generate", "--root", root, "--schema", schemaFile, "--dialect", "oracle")
		assert.ErrorContains(t, err, "unsupported dialect")
	})

	t.Run("locked root", func(t *testing.T) {
		lock := filepath.Join(root, gen.LockFile)
		require.NoError(t, os.WriteFile(lock, nil, 0o644))
		defer os.Remove(lock)
		_, err := execute(t, "generate", "--root", root, "--schema", schemaFile)
		assert.ErrorIs(t, err, gen.ErrLocked)
	})
}

func TestGenerate_ConfigFile(t *testing.T) {
	root, schemaFile := newProject(t)
	config := filepath.Join(root, "tmplgen.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`root: `+root+`
schema: `+schemaFile+`
templates: [edit]
manifest: false
categories:
  - name: edit
    suffix: _form.go
    directory: admin
    policy: generate-once
`), 0o644))

	out, err := execute(t, "generate", "--config", config)
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(root, "admin", "project_form.go"))
	assert.NoFileExists(t, filepath.Join(root, gen.ManifestFile))

	out, err = execute(t, "generate", "--config", config)
	require.NoError(t, err, out)
	assert.Contains(t, out, "0 written, 1 skipped")

	t.Run("flag overrides file", func(t *testing.T) {
		out, err := execute(t, "generate", "--config", config, "-t", "list")
		require.NoError(t, err, out)
		assert.FileExists(t, filepath.Join(root, "forms", "project_list.go"))
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("TMPLGEN_TEMPLATES", "graphql")
		out, err := execute(t, "generate", "--config", config)
		require.NoError(t, err, out)
		assert.FileExists(t, filepath.Join(root, "graphql", "project.graphql"))
	})

	t.Run("invalid policy", func(t *testing.T) {
		bad := filepath.Join(root, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("categories:\n  - {name: edit, suffix: .go, policy: sometimes}\n"), 0o644))
		_, err := execute(t, "generate", "--config", bad, "--schema", schemaFile, "--root", root)
		assert.ErrorContains(t, err, `category "edit"`)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := execute(t, "generate", "--config", filepath.Join(root, "nope.yaml"))
		assert.ErrorContains(t, err, "read config")
	})
}

func TestTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "edit.tmpl"), []byte("package {{ pkg }}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audit.tmpl"), []byte("{{ .Name }}\n"), 0o644))

	out, err := execute(t, "templates", "--template-path", dir)
	require.NoError(t, err)
	lines := map[string][]string{}
	for _, line := range bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n")) {
		fields := bytes.Fields(line)
		require.Len(t, fields, 3, string(line))
		lines[string(fields[0])] = []string{string(fields[1]), string(fields[2])}
	}
	assert.Equal(t, []string{"text", dir}, lines["edit"])
	assert.Equal(t, []string{"text", dir}, lines["audit"])
	assert.Equal(t, []string{"text", gen.BuiltinName}, lines["list"])
	assert.Equal(t, []string{"native", gen.BuiltinName}, lines["model_gen"])
}

func TestInspect(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "app.db")
	drv, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, drv.Exec(context.Background(),
		`CREATE TABLE projects (id INTEGER PRIMARY KEY, name TEXT NOT NULL, budget REAL)`, []any{}, nil))
	require.NoError(t, drv.Close())

	output := filepath.Join(t.TempDir(), "schema.yaml")
	_, err = execute(t, "inspect", "--db-dialect", "sqlite3", "--dsn", dsn, "-o", output)
	require.NoError(t, err)

	s, err := load.LoadFile(output)
	require.NoError(t, err)
	require.Len(t, s.Tables, 1)
	p := s.Table("projects")
	require.NotNil(t, p)
	require.Len(t, p.Columns, 3)
	assert.True(t, p.Column("id").PrimaryKey)
	assert.True(t, p.Column("budget").Nullable)

	t.Run("stdout", func(t *testing.T) {
		out, err := execute(t, "inspect", "--db-dialect", "sqlite", "--dsn", dsn)
		require.NoError(t, err)
		assert.Contains(t, out, "name: projects")
	})

	t.Run("missing dsn", func(t *testing.T) {
		_, err := execute(t, "inspect", "--db-dialect", "sqlite")
		assert.ErrorContains(t, err, "dsn are required")
	})
}

func (a *app) runs() int { return int(a.passes.Load()) }

func TestWatch(t *testing.T) {
	root, schemaFile := newProject(t)
	a := &app{v: newViper()}
	cmd := a.watchCmd()
	cmd.Flags().String("root", ".", "")
	cmd.Flags().Bool("verbose", false, "")
	require.NoError(t, cmd.ParseFlags([]string{"--root", root, "--schema", schemaFile, "-t", "edit"}))
	require.NoError(t, a.init(cmd, nil))
	assert.Equal(t, []string{root}, a.watchDirs())

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- a.watch(ctx, &buf, events, errs, 200*time.Millisecond) }()

	events <- fsnotify.Event{Name: filepath.Join(root, "notes.txt"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: schemaFile, Op: fsnotify.Chmod}
	errs <- os.ErrPermission
	events <- fsnotify.Event{Name: schemaFile, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: schemaFile, Op: fsnotify.Write}
	require.Eventually(t, func() bool { return a.runs() >= 2 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 2, a.runs())
	assert.FileExists(t, filepath.Join(root, "forms", "project_edit.go"))
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name     string
		op       fsnotify.Op
		expected bool
	}{
		{"schema/project.yaml", fsnotify.Write, true},
		{"schema/project.yml", fsnotify.Create, true},
		{"templates/edit.tmpl", fsnotify.Remove, true},
		{"templates/edit.tmpl", fsnotify.Rename, true},
		{"templates/edit.tmpl", fsnotify.Chmod, false},
		{"templates/edit.tmpl~", fsnotify.Write, false},
		{"schema/README.md", fsnotify.Write, false},
	}
	for _, tt := range tests {
		t.Run(tt.name+" "+tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, relevant(fsnotify.Event{Name: tt.name, Op: tt.op}))
		})
	}
}
