package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yigit/profrate/internal/app/migrations"
)

func (a *app) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(func(e *env) error {
				if err := migrations.Migrate(e.database.DB, e.database.Dialect); err != nil {
					return err
				}
				version, err := migrations.Version(e.database.DB, e.database.Dialect)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "database schema at version %d\n", version)
				return nil
			})
		},
	}
}
