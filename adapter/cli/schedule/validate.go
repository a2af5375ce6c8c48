package schedule

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/security"
)

var validateIncludeManual bool

var validateCmd = &cobra.Command{
	Use:   "validate <schedule.csv>",
	Short: "Check a schedule file for double-booked group A staff",
	Long: `Read a schedule CSV and report every pair of overlapping procedures
performed by the same group A staff member. Exits non-zero when conflicts
are found.

Examples:
  clinicflow schedule validate schedule.csv
  clinicflow schedule validate schedule.csv --include-manual`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		f, err := security.SafeOpen(args[0])
		if err != nil {
			return fmt.Errorf("failed to open schedule: %w", err)
		}
		defer f.Close()

		report, err := app.ValidateHandler.Handle(cmd.Context(), commands.ValidateDatasetCommand{
			Source:        f,
			IncludeManual: validateIncludeManual,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if report.Valid() {
			fmt.Fprintf(out, "OK: %d appointments, no conflicts\n", len(report.Records))
			return nil
		}
		fmt.Fprintf(out, "Found %d conflicts in %d appointments:\n", len(report.Conflicts), len(report.Records))
		cli.PrintConflicts(out, report.Conflicts)
		return fmt.Errorf("%d conflicts found", len(report.Conflicts))
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateIncludeManual, "include-manual", false, "also check stored manual entries")
}
