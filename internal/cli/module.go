package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/app/services"
)

func (a *app) newModuleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Manage module instances and their teaching professors",
	}
	cmd.AddCommand(a.newModuleAddCommand())
	cmd.AddCommand(a.newModuleEditCommand())
	cmd.AddCommand(a.newModuleAssignCommand(true))
	cmd.AddCommand(a.newModuleAssignCommand(false))
	cmd.AddCommand(a.newModuleDeleteCommand())
	cmd.AddCommand(a.newModuleListCommand())
	return cmd
}

func describeInstance(mi *models.ModuleInstance) string {
	return fmt.Sprintf("%d: %s %d/%d", mi.ID, mi.Module, mi.Year, mi.Semester)
}

func parseInstanceID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid module instance id %q", arg)
	}
	return id, nil
}

func instanceFlags(cmd *cobra.Command, in *services.ModuleInstanceInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "module name")
	cmd.Flags().StringVar(&in.Code, "code", "", "module code")
	cmd.Flags().IntVar(&in.Year, "year", 0, "year (2015-2025)")
	cmd.Flags().IntVar(&in.Semester, "semester", 0, "semester (1 or 2)")
}

func (a *app) newModuleAddCommand() *cobra.Command {
	var (
		in         services.ModuleInstanceInput
		professors []string
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a module instance",
		Example: `  admin module add --name "Programming" --code CS101 --year 2020 --semester 1 --professor JE1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(func(e *env) error {
				mi, err := e.services.Modules.CreateInstance(cmd.Context(), in, professors)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created module instance %s\n", describeInstance(mi))
				return nil
			})
		},
	}

	instanceFlags(cmd, &in)
	cmd.Flags().StringArrayVar(&professors, "professor", nil, "id of a teaching professor (repeatable)")
	for _, name := range []string{"name", "code", "year", "semester"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) newModuleEditCommand() *cobra.Command {
	var in services.ModuleInstanceInput

	cmd := &cobra.Command{
		Use:   "edit <instance-id>",
		Short: "Change the module, year or semester of an instance",
		Long: `Change the module, year or semester of an instance. Flags that are not
given keep their current value. The name/code pair goes through the same
checks as when adding an instance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInstanceID(args[0])
			if err != nil {
				return err
			}

			return a.run(func(e *env) error {
				current, err := e.services.Modules.GetInstance(cmd.Context(), id)
				if err != nil {
					return err
				}

				flags := cmd.Flags()
				if !flags.Changed("name") {
					in.Name = current.Module.Name
				}
				if !flags.Changed("code") {
					in.Code = current.Module.Code
				}
				if !flags.Changed("year") {
					in.Year = current.Year
				}
				if !flags.Changed("semester") {
					in.Semester = int(current.Semester)
				}

				mi, err := e.services.Modules.UpdateInstance(cmd.Context(), id, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated module instance %s\n", describeInstance(mi))
				return nil
			})
		},
	}

	instanceFlags(cmd, &in)
	return cmd
}

func (a *app) newModuleAssignCommand(assign bool) *cobra.Command {
	use, short, verb := "assign", "Add a teaching professor to an instance", "assigned"
	if !assign {
		use, short, verb = "unassign", "Remove a teaching professor from an instance", "unassigned"
	}

	return &cobra.Command{
		Use:   use + " <instance-id> <professor-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInstanceID(args[0])
			if err != nil {
				return err
			}

			return a.run(func(e *env) error {
				op := e.services.Modules.AssignProfessor
				if !assign {
					op = e.services.Modules.UnassignProfessor
				}
				if err := op(cmd.Context(), id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s professor %s to module instance %d\n", verb, args[1], id)
				return nil
			})
		},
	}
}

func (a *app) newModuleDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <instance-id>",
		Short: "Delete an instance together with its ratings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInstanceID(args[0])
			if err != nil {
				return err
			}

			return a.run(func(e *env) error {
				if err := e.services.Modules.DeleteInstance(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted module instance %d\n", id)
				return nil
			})
		},
	}
}

func (a *app) newModuleListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List module instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(func(e *env) error {
				instances, err := e.services.Modules.ListInstances(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([]table.Row, 0, len(instances))
				for _, mi := range instances {
					ids := make([]string, 0, len(mi.Professors))
					for _, p := range mi.Professors {
						ids = append(ids, p.ExternalID)
					}
					rows = append(rows, table.Row{mi.ID, mi.Module.Code, mi.Module.Name, mi.Year, int(mi.Semester), strings.Join(ids, ", ")})
				}
				renderTable(cmd.OutOrStdout(), table.Row{"ID", "Code", "Name", "Year", "Semester", "Professors"}, rows)
				return nil
			})
		},
	}
}
