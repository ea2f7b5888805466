package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cessadesk/cessadesk/internal/config"
	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/sqlstore"
)

func (c *CLI) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		Long:  `Apply the embedded schema migrations to the postgres or sqlite backend. Already applied versions are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := c.cfg.Backend
			if b.Driver != string(sqlstore.Postgres) && b.Driver != string(sqlstore.SQLite) {
				return errs.Config(fmt.Sprintf("the %s backend has no SQL schema", b.Driver),
					"set "+config.EnvName("backend.driver")+" to postgres or sqlite")
			}
			ctx := cmd.Context()
			db, err := sqlstore.Open(ctx, sqlstore.Dialect(b.Driver), b.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := sqlstore.NewMigrationRunner(db).Run(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "schema is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(out, "applied %s\n", v)
			}
			return nil
		},
	}
}
