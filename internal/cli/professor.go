package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/yigit/profrate/internal/app/services"
)

func (a *app) newProfessorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "professor",
		Short: "Manage professors",
	}
	cmd.AddCommand(a.newProfessorAddCommand())
	cmd.AddCommand(a.newProfessorListCommand())
	return cmd
}

func (a *app) newProfessorAddCommand() *cobra.Command {
	var in services.ProfessorInput

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a professor",
		Example: `  admin professor add --id JE1 --name "J. Excellent"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(func(e *env) error {
				p, err := e.services.Professors.Create(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created professor %s\n", p)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.ID, "id", "", "professor id (up to 8 characters)")
	cmd.Flags().StringVar(&in.Name, "name", "", "professor name")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) newProfessorListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List professors with their overall rating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(func(e *env) error {
				resp, err := e.services.Catalog.ListProfessors(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([]table.Row, 0, len(resp.Names))
				for i := range resp.Names {
					rows = append(rows, table.Row{resp.ProfessorIDs[i], resp.Names[i], resp.Ratings[i]})
				}
				renderTable(cmd.OutOrStdout(), table.Row{"ID", "Name", "Rating"}, rows)
				return nil
			})
		},
	}
}
