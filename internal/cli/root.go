// Package cli implements the tmplgen command line.
package cli

import (
	"io"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/syssam/tmplgen/compiler/gen"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *Config
	log        *zap.Logger
	// passes counts the generation passes of the watch command.
	passes atomic.Int32
}

// NewRootCmd returns the tmplgen root command.
func NewRootCmd() *cobra.Command {
	a := &app{v: newViper(), log: zap.NewNop()}
	cmd := &cobra.Command{
		Use:   "tmplgen",
		Short: "Generate code for database tables from templates",
		Long: `tmplgen renders code templates for every table of a schema and writes the
results into a project tree. Templates are resolved from the built-in set and
from template directories; a later directory overrides an earlier one.

Files of generate-once templates are created when missing and never touched
again. Files of always-regenerate templates are replaced on every run.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "configuration file (default ./tmplgen.yaml)")
	flags.String("root", ".", "project root generated files are written under")
	flags.BoolP("verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		a.generateCmd(),
		a.templatesCmd(),
		a.inspectCmd(),
		a.watchCmd(),
	)
	return cmd
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"root":          "root",
	"verbose":       "verbose",
	"schema":        "schema",
	"template":      "templates",
	"template-path": "template_paths",
	"dialect":       "dialect",
	"package":       "package",
	"db-dialect":    "database.dialect",
	"dsn":           "database.dsn",
	"db-schema":     "database.schema",
}

// init binds the flags of the running command, reads the configuration and
// builds the logger. Only the running command binds its flags, so commands
// sharing a flag name do not shadow each other.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if err := readConfig(a.v, a.configFile); err != nil {
		return err
	}
	cfg, err := loadConfig(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.log, err = newLogger(cfg.Verbose); err != nil {
		return err
	}
	if f := a.v.ConfigFileUsed(); f != "" {
		a.log.Debug("config loaded", zap.String("file", f))
	}
	return nil
}

// generator creates a generator from the configuration.
func (a *app) generator() (*gen.Generator, error) {
	opts, err := a.cfg.options(a.log)
	if err != nil {
		return nil, err
	}
	return gen.NewGenerator(opts...)
}

// templates returns the configured template names, or every available
// template when none is configured.
func (a *app) templates(g *gen.Generator) ([]string, error) {
	if len(a.cfg.Templates) > 0 {
		return a.cfg.Templates, nil
	}
	return availableNames(g)
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
