package schedule

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/services"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/security"
)

var (
	batchFile       string
	batchPatients   []string
	batchProcedures string
	batchFlags      runFlags
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate appointments for several patients at once",
	Long: `Generate appointments for several patients sharing one booking ledger,
so no group A staff member is double-booked across patients.

Patients come from --file, one "patient_id;procedures" per line (procedures
optional, lines starting with # ignored), or from repeated --patient flags.
Patients without their own procedures use --procedures.

Examples:
  clinicflow schedule batch --file patients.txt --procedures "điện,thủy,xoa,giác" \
    --start 19-10-2026 --end 23-10-2026 --slots 08:00,13:30 -o batch.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		var lines []string
		if batchFile != "" {
			if lines, err = security.ReadLines(batchFile); err != nil {
				return fmt.Errorf("failed to read batch file: %w", err)
			}
		}
		lines = append(lines, batchPatients...)
		patients, err := services.ParseBatchLines(app.Clinic.Catalog, lines)
		if err != nil {
			return err
		}
		if len(patients) == 0 {
			return fmt.Errorf("no patients given, use --file or --patient")
		}

		var defaults []string
		if strings.TrimSpace(batchProcedures) != "" {
			if defaults, err = app.Clinic.Catalog.ParseProcedures(batchProcedures); err != nil {
				return err
			}
		}
		opts, err := batchFlags.options(cmd, app)
		if err != nil {
			return err
		}

		result, err := app.GenerateHandler.HandleBatch(cmd.Context(), commands.GenerateBatchCommand{
			Patients:          patients,
			DefaultProcedures: defaults,
			Options:           opts,
		})
		if err != nil {
			return fmt.Errorf("failed to generate batch: %w", err)
		}

		if err := cli.WriteRecords(cmd, app, batchFlags.format, batchFlags.output, result.Records, result.Context.Roster()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Generated %d appointments for %d patients (run %s)\n",
			len(result.Records), len(patients), result.RunID)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "batch file with one patient per line")
	batchCmd.Flags().StringArrayVarP(&batchPatients, "patient", "p", nil, "patient entry, \"id\" or \"id;procedures\" (repeatable)")
	batchCmd.Flags().StringVar(&batchProcedures, "procedures", "", "default procedures for patients without their own")
	batchFlags.register(batchCmd.Flags())
}
