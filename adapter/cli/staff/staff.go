// Package staff holds the roster commands.
package staff

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/application/commands"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// Cmd is the staff command group
var Cmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage the clinic roster",
	Long: `List and edit the staff who can be assigned to procedures.

Group A staff the junior positions and are checked for double bookings.
Group B staff the senior position. While no staff are stored, the roster
of the clinic catalog is used; "staff seed" copies it into the store.`,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List staff with their group and status",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		members, err := app.ListStaffHandler.Handle(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list staff: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(members) == 0 {
			fmt.Fprintln(out, "No staff found.")
			return nil
		}
		fmt.Fprintf(out, "Staff (%d):\n", len(members))
		fmt.Fprintln(out, strings.Repeat("-", 50))
		for _, m := range members {
			status := ""
			if m.Disabled {
				status = "  [disabled]"
			}
			fmt.Fprintf(out, "%s  %-8s %s%s\n", m.Group, m.Key, m.FullName, status)
		}
		return nil
	},
}

var (
	addName  string
	addGroup string
)

var addCmd = &cobra.Command{
	Use:   "add <key>",
	Short: "Add or update a staff member",
	Long: `Add a staff member, or update the name and group of an existing one.

Examples:
  clinicflow staff add duy --name "Nguyễn Văn Duy" --group A
  clinicflow staff add trị --name "Bùi Tá Việt Trị" --group B`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		group, err := parseGroup(addGroup)
		if err != nil {
			return err
		}
		m, err := app.SaveStaffHandler.Handle(cmd.Context(), commands.SaveStaffCommand{
			Key:      args[0],
			FullName: addName,
			Group:    group,
		})
		if err != nil {
			return fmt.Errorf("failed to save staff: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s), group %s\n", m.Key, m.FullName, m.Group)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <key>",
	Short:   "Remove a staff member",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		if err := app.RemoveStaffHandler.Handle(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to remove staff: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <key>...",
	Short: "Exclude staff from assignment",
	Args:  cobra.MinimumNArgs(1),
	RunE:  setEnabled(false),
}

var enableCmd = &cobra.Command{
	Use:   "enable <key>...",
	Short: "Make disabled staff assignable again",
	Args:  cobra.MinimumNArgs(1),
	RunE:  setEnabled(true),
}

func setEnabled(enabled bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		disabled, err := app.SetStaffEnabledHandler.Handle(cmd.Context(), commands.SetStaffEnabledCommand{
			Keys:    args,
			Enabled: enabled,
		})
		if err != nil {
			return fmt.Errorf("failed to update staff: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(disabled) == 0 {
			fmt.Fprintln(out, "All staff enabled.")
			return nil
		}
		fmt.Fprintf(out, "Disabled: %s\n", strings.Join(disabled, ", "))
		return nil
	}
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Copy the catalog roster into an empty staff store",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		n, err := app.Roster.Seed(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to seed roster: %w", err)
		}
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Staff store already populated, nothing to seed.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d staff members.\n", n)
		return nil
	},
}

func parseGroup(s string) (int, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "1":
		return int(domain.GroupA), nil
	case "B", "2":
		return int(domain.GroupB), nil
	default:
		return 0, fmt.Errorf("invalid group %q (valid: A, B)", s)
	}
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "full name (required)")
	addCmd.Flags().StringVarP(&addGroup, "group", "g", "A", "group: A (junior) or B (senior)")
	_ = addCmd.MarkFlagRequired("name")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(disableCmd)
	Cmd.AddCommand(enableCmd)
	Cmd.AddCommand(seedCmd)
}
