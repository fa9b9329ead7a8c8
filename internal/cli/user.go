package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(a.newUserAddCommand())
	cmd.AddCommand(a.newUserActiveCommand(true))
	cmd.AddCommand(a.newUserActiveCommand(false))
	return cmd
}

func (a *app) newUserAddCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(func(e *env) error {
				user, err := e.services.Auth.CreateUser(cmd.Context(), username, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", user.Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) newUserActiveCommand(active bool) *cobra.Command {
	use, short, verb := "activate", "Allow an account to log in", "activated"
	if !active {
		use, short, verb = "deactivate", "Stop an account from logging in", "deactivated"
	}

	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(e *env) error {
				if err := e.services.Auth.SetActive(cmd.Context(), args[0], active); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s user %s\n", verb, args[0])
				return nil
			})
		},
	}
}
