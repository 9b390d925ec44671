package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/syssam/tmplgen/compiler/gen"
	gensql "github.com/syssam/tmplgen/compiler/gen/sql"
)

// ConfigName is the base name of the configuration file looked up in the
// working directory and the project root.
const ConfigName = "tmplgen"

// Config holds the settings of a tmplgen invocation, merged from the
// configuration file, TMPLGEN_* environment variables and flags.
type Config struct {
	Root          string           `mapstructure:"root"`
	Schema        string           `mapstructure:"schema"`
	Templates     []string         `mapstructure:"templates"`
	TemplatePaths []string         `mapstructure:"template_paths"`
	Package       string           `mapstructure:"package"`
	Dialect       string           `mapstructure:"dialect"`
	Header        string           `mapstructure:"header"`
	Manifest      bool             `mapstructure:"manifest"`
	Lock          bool             `mapstructure:"lock"`
	Verbose       bool             `mapstructure:"verbose"`
	Categories    []CategoryConfig `mapstructure:"categories"`
	Database      DatabaseConfig   `mapstructure:"database"`
}

// CategoryConfig declares a template category in the configuration file.
type CategoryConfig struct {
	Name      string `mapstructure:"name"`
	Suffix    string `mapstructure:"suffix"`
	Directory string `mapstructure:"directory"`
	DirSuffix string `mapstructure:"dir_suffix"`
	Policy    string `mapstructure:"policy"`
}

// DatabaseConfig holds the connection used by the inspect command.
type DatabaseConfig struct {
	Dialect string `mapstructure:"dialect"`
	DSN     string `mapstructure:"dsn"`
	Schema  string `mapstructure:"schema"`
}

// newViper returns a viper instance with the defaults of all keys.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("root", ".")
	v.SetDefault("schema", "schema")
	v.SetDefault("dialect", "sqlite")
	v.SetDefault("header", gen.DefaultHeader)
	v.SetDefault("manifest", true)
	v.SetDefault("lock", true)
	v.SetEnvPrefix("TMPLGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readConfig reads the configuration file: the given path, or tmplgen.yaml
// in the working directory. A missing default file is not an error.
func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// loadConfig decodes the merged settings.
func loadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// categories converts the configured categories.
func (c *Config) categories() ([]*gen.Category, error) {
	cats := make([]*gen.Category, 0, len(c.Categories))
	for _, cc := range c.Categories {
		cat := &gen.Category{
			Name:      cc.Name,
			Suffix:    cc.Suffix,
			Directory: cc.Directory,
			DirSuffix: cc.DirSuffix,
		}
		if cc.Policy != "" {
			p, err := gen.ParsePolicy(cc.Policy)
			if err != nil {
				return nil, fmt.Errorf("category %q: %w", cc.Name, err)
			}
			cat.Policy = p
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// schemaPath returns the schema path relative to the root, unless absolute
// or present relative to the working directory.
func (c *Config) schemaPath() string {
	if filepath.IsAbs(c.Schema) {
		return c.Schema
	}
	if _, err := os.Stat(c.Schema); err == nil {
		return c.Schema
	}
	return filepath.Join(c.Root, c.Schema)
}

// options returns the generator options of the configuration.
func (c *Config) options(log *zap.Logger) ([]gen.Option, error) {
	cats, err := c.categories()
	if err != nil {
		return nil, err
	}
	opts := []gen.Option{
		gen.WithRoot(c.Root),
		gen.WithDialect(c.Dialect),
		gen.WithHeader(c.Header),
		gen.WithManifest(c.Manifest),
		gen.WithLock(c.Lock),
		gen.WithLogger(log),
		gen.WithNatives(gensql.NewModel()),
		gen.WithSearchPaths(c.TemplatePaths...),
	}
	if len(cats) > 0 {
		opts = append(opts, gen.WithCategories(cats...))
	}
	if c.Package != "" {
		opts = append(opts, gen.WithPackage(c.Package))
	}
	return opts, nil
}

// newLogger builds the CLI logger. Verbose mode logs at debug level with
// the development encoder.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}
