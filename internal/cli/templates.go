package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/tmplgen/compiler/gen"
)

func (a *app) templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the available templates and the source each one resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.generator()
			if err != nil {
				return err
			}
			winners, err := gen.Available(g.Sources())
			if err != nil {
				return err
			}
			names, err := availableNames(g)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			for _, name := range names {
				d, err := g.Resolve(name)
				if err != nil {
					return err
				}
				kind := "text"
				if d.Native() {
					kind = "native"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, kind, origin.Sprint(winners[name]))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringSlice("template-path", nil, "template directories, later ones override earlier ones")
	return cmd
}
