package gen

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/mod/modfile"
)

// DefaultHeader is the comment written at the top of always-regenerated Go files.
const DefaultHeader = "// Code generated by tmplgen, DO NOT EDIT."

// Config holds the configuration of a generator.
type Config struct {
	// Root is the project directory generated files are written under.
	Root string
	// Sources are the template sources searched after the built-in one.
	// A later source overrides an earlier one.
	Sources []Source
	// Natives are native renderers added to the built-in source.
	Natives []Native
	// Categories added to or overriding the built-in ones.
	Categories []*Category
	// Package is the Go import path of Root (e.g. github.com/org/app).
	// Defaults to the module path declared in Root/go.mod.
	Package string
	// Header is written at the top of always-regenerated Go files.
	Header string
	// Dialect of the SQL in generated models.
	Dialect string
	// Manifest enables the run manifest under Root.
	Manifest bool
	// Lock guards Root with a lock file for the duration of a pass.
	Lock bool
	// Format runs goimports on Go output and validates GraphQL output.
	Format bool
	// Logger receives resolution and emission events.
	Logger *zap.Logger
}

// SearchList returns the template sources in resolution order:
// the built-in source first, then the configured ones.
func (c *Config) SearchList() []Source {
	return append([]Source{Builtin(c.Natives...)}, c.Sources...)
}

// modulePath returns the module path declared in the go.mod file of the
// root directory, or an empty string.
func modulePath(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}
