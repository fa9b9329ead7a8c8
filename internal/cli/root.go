// Package cli provides the administrative command-line interface. It covers
// the data that the HTTP API never creates: professors, module instances and
// accounts.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	appRepos "github.com/yigit/profrate/internal/app/repositories"
	"github.com/yigit/profrate/internal/app/services"
	"github.com/yigit/profrate/internal/config"
	"github.com/yigit/profrate/internal/db"
	"github.com/yigit/profrate/internal/pkg/auth"
	"github.com/yigit/profrate/internal/pkg/logger"
)

// env is the state a command runs against
type env struct {
	cfg      *config.Config
	database *db.Database
	services *services.Services
}

func (e *env) close() {
	if e.database != nil {
		if err := e.database.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close database")
		}
	}
}

type app struct {
	configPath string
	cfg        *config.Config
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer professors, module instances and accounts",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			cfg, err := config.LoadConfig(config.ResolvePath(a.configPath))
			if err != nil {
				return err
			}
			logger.Configure(logger.Config{
				Level:  logger.LogLevel(cfg.Logging.Level),
				Pretty: true,
				Output: os.Stderr,
			})
			a.cfg = cfg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: $PROFRATE_CONFIG or "+config.DefaultConfigPath+")")

	rootCmd.AddCommand(a.newMigrateCommand())
	rootCmd.AddCommand(a.newProfessorCommand())
	rootCmd.AddCommand(a.newModuleCommand())
	rootCmd.AddCommand(a.newUserCommand())
	rootCmd.AddCommand(a.newSeedCommand())

	return rootCmd
}

// open connects to the configured database and wires the services
func (a *app) open() (*env, error) {
	if a.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	database, err := db.Open(a.cfg)
	if err != nil {
		return nil, err
	}

	store := appRepos.NewSQLStore(database.DB, database.Dialect)
	hasher := auth.NewPasswordHasher(a.cfg.Auth.BcryptCost)

	return &env{
		cfg:      a.cfg,
		database: database,
		services: services.NewServices(store, hasher, logger.Get()),
	}, nil
}

// run opens an env for the duration of fn
func (a *app) run(fn func(e *env) error) error {
	e, err := a.open()
	if err != nil {
		return err
	}
	defer e.close()
	return fn(e)
}
