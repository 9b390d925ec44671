package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/tmplgen/compiler/load"
	"github.com/syssam/tmplgen/dialect/introspect"
	"github.com/syssam/tmplgen/dialect/sql"
)

func (a *app) inspectCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Write the schema description of a live database",
		Long: `Inspect reads the tables of a database catalog and writes them in the schema
description format accepted by generate.

Examples:
  tmplgen inspect --db-dialect sqlite --dsn app.db
  tmplgen inspect --db-dialect postgres --dsn "postgres://localhost/shop?sslmode=disable" -o schema/shop.yaml
  TMPLGEN_DATABASE_DSN="user:pass@tcp(localhost:3306)/shop" tmplgen inspect --db-dialect mysql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db := a.cfg.Database
			if db.Dialect == "" || db.DSN == "" {
				return errors.New("inspect: database dialect and dsn are required")
			}
			drv, err := sql.Open(db.Dialect, db.DSN)
			if err != nil {
				return err
			}
			defer drv.Close()
			if err := drv.Ping(cmd.Context()); err != nil {
				return err
			}
			stats := sql.NewStatsDriver(drv, sql.WithLogger(a.log))
			tables, err := introspect.New(stats,
				introspect.WithSchema(db.Schema),
				introspect.WithLogger(a.log),
			).Tables(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("database inspected",
				zap.String("dialect", drv.Dialect()),
				zap.Int("tables", len(tables)),
				zap.Stringer("queries", stats.QueryStats().Stats()),
			)
			data, err := load.MarshalSchema(tables)
			if err != nil {
				return err
			}
			if output == "" {
				_, err := out(cmd).Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.String("db-dialect", "", "database dialect: mysql, postgres or sqlite")
	flags.String("dsn", "", "database connection string")
	flags.String("db-schema", "", "database schema to inspect (default: current schema)")
	flags.StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
