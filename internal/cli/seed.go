package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yigit/profrate/internal/pkg/logger"
	"github.com/yigit/profrate/internal/seed"
)

func (a *app) newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "seed <file>",
		Short:   "Load professors, module instances and accounts from a YAML file",
		Example: `  admin seed configs/seed.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.ReadFile(args[0])
			if err != nil {
				return err
			}

			return a.run(func(e *env) error {
				summary, err := seed.Load(cmd.Context(), e.services, f, logger.Get())
				fmt.Fprintf(cmd.OutOrStdout(), "created %d professors, %d module instances, %d users (%d skipped)\n",
					summary.Professors, summary.Modules, summary.Users, summary.Skipped)
				return err
			})
		},
	}
}
