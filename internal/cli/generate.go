package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/syssam/tmplgen/compiler/gen"
	"github.com/syssam/tmplgen/compiler/load"
)

func (a *app) generateCmd() *cobra.Command {
	var prune bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate files for all tables of the schema",
		Long: `Generate renders every selected template for every table of the schema and
prints one line per (table, template) pair. The command fails if any pair
failed; the files of the other pairs are still written.

Examples:
  tmplgen generate                                 # all templates, ./schema
  tmplgen generate --schema db.yaml -t edit -t list
  tmplgen generate --template-path ./templates --prune`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd.Context(), out(cmd), prune)
		},
	}
	addGenerateFlags(cmd.Flags())
	cmd.Flags().BoolVar(&prune, "prune", false, "remove stale generated files")
	return cmd
}

// addGenerateFlags registers the flags shared by generate and watch.
func addGenerateFlags(flags *pflag.FlagSet) {
	flags.String("schema", "schema", "schema description file or directory")
	flags.StringSliceP("template", "t", nil, "templates to generate (default all)")
	flags.StringSlice("template-path", nil, "template directories, later ones override earlier ones")
	flags.String("dialect", "sqlite", "SQL dialect of generated models")
	flags.String("package", "", "Go import path of the root (default: module path of root/go.mod)")
}

// generate runs one generation pass and prints its report.
func (a *app) generate(ctx context.Context, w io.Writer, prune bool) error {
	s, err := load.Load(a.cfg.schemaPath())
	if err != nil {
		return err
	}
	g, err := a.generator()
	if err != nil {
		return err
	}
	names, err := a.templates(g)
	if err != nil {
		return err
	}
	a.log.Debug("generating",
		zap.String("root", a.cfg.Root),
		zap.Int("tables", len(s.Tables)),
		zap.Strings("templates", names),
	)
	r, err := g.Run(ctx, s.Tables, names)
	if perr := printReport(w, r); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}
	if prune {
		removed, err := g.Prune()
		for _, p := range removed {
			_, _ = fmt.Fprintf(w, "%s %s\n", pruned.Sprint("pruned"), p)
		}
		if err != nil {
			return err
		}
	}
	if n := r.Count(gen.Failed); n > 0 {
		return fmt.Errorf("%d of %d pairs failed", n, len(r.Results))
	}
	return nil
}

// availableNames returns the sorted names of all resolvable templates.
func availableNames(g *gen.Generator) ([]string, error) {
	winners, err := gen.Available(g.Sources())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(winners))
	for name := range winners {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
