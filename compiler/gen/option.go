package gen

import (
	"errors"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/syssam/tmplgen/dialect"
)

// Option configures code generation.
type Option func(*Config) error

// WithRoot sets the project root directory.
// Every target path is resolved relative to it.
func WithRoot(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Root", nil, "root directory cannot be empty")
		}
		c.Root = dir
		return nil
	}
}

// WithPackage sets the Go import path of the project root.
// For example: "github.com/org/project".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithSearchPaths appends template directories to the search list.
// Later directories override templates of earlier ones.
func WithSearchPaths(dirs ...string) Option {
	return func(c *Config) error {
		for _, dir := range dirs {
			if dir == "" {
				return NewConfigError("SearchPaths", nil, "search path cannot be empty")
			}
			info, err := os.Stat(dir)
			if err != nil {
				return NewConfigError("SearchPaths", dir, err.Error())
			}
			if !info.IsDir() {
				return NewConfigError("SearchPaths", dir, "search path is not a directory")
			}
			c.Sources = append(c.Sources, Dir(filepath.Clean(dir)))
		}
		return nil
	}
}

// WithSources appends template sources to the search list.
func WithSources(sources ...Source) Option {
	return func(c *Config) error {
		for _, s := range sources {
			if s == nil {
				return NewConfigError("Sources", nil, "source cannot be nil")
			}
		}
		c.Sources = append(c.Sources, sources...)
		return nil
	}
}

// WithNatives registers native renderers in the built-in source.
func WithNatives(natives ...Native) Option {
	return func(c *Config) error {
		for _, n := range natives {
			if n == nil {
				return NewConfigError("Natives", nil, "native renderer cannot be nil")
			}
			if !ValidIdentifier(n.Name()) {
				return NewConfigError("Natives", n.Name(), "invalid template name")
			}
		}
		c.Natives = append(c.Natives, natives...)
		return nil
	}
}

// WithCategories adds or overrides template categories.
func WithCategories(cats ...*Category) Option {
	return func(c *Config) error {
		for _, cat := range cats {
			if cat == nil || cat.Name == "" {
				return NewConfigError("Categories", nil, "category name cannot be empty")
			}
			if cat.Suffix == "" {
				return NewConfigError("Categories", cat.Name, "category suffix cannot be empty")
			}
		}
		c.Categories = slices.Concat(cats, c.Categories)
		return nil
	}
}

// WithLogger sets the logger of the generator.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated Go file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithDialect sets the SQL dialect of generated models.
// Supported dialects: "mysql", "postgres", "sqlite".
func WithDialect(name string) Option {
	return func(c *Config) error {
		d, err := dialect.Normalize(name)
		if err != nil {
			return NewConfigError("Dialect", name, "unsupported dialect; use mysql, postgres, or sqlite")
		}
		c.Dialect = d
		return nil
	}
}

// WithManifest enables or disables the run manifest.
func WithManifest(enabled bool) Option {
	return func(c *Config) error {
		c.Manifest = enabled
		return nil
	}
}

// WithLock enables or disables the lock file guarding the project root.
func WithLock(enabled bool) Option {
	return func(c *Config) error {
		c.Lock = enabled
		return nil
	}
}

// WithFormat enables or disables output formatting and validation.
func WithFormat(enabled bool) Option {
	return func(c *Config) error {
		c.Format = enabled
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Root:     ".",
		Dialect:  dialect.SQLite,
		Header:   DefaultHeader,
		Format:   true,
		Manifest: true,
		Logger:   zap.NewNop(),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.Package == "" {
		c.Package = modulePath(c.Root)
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
