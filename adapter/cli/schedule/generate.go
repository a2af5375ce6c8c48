package schedule

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/commands"
)

var (
	generatePatient    string
	generateProcedures string
	generateFlags      runFlags
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the appointments of one patient",
	Long: `Generate one appointment per day for a patient, assigning staff to the
four procedures of each visit.

Examples:
  clinicflow schedule generate --patient BN001 --procedures "điện,thủy,xoa,giác" \
    --start 19-10-2026 --end 30-10-2026 --slots 08:00,13:30
  clinicflow schedule generate --patient BN001 --procedures "điện;thủy;xoa;giác" \
    --slots-file slots.json -o schedule.xlsx`,
	Aliases: []string{"gen"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		procs, err := app.Clinic.Catalog.ParseProcedures(generateProcedures)
		if err != nil {
			return err
		}
		opts, err := generateFlags.options(cmd, app)
		if err != nil {
			return err
		}

		result, err := app.GenerateHandler.Handle(cmd.Context(), commands.GenerateScheduleCommand{
			PatientID:  generatePatient,
			Procedures: procs,
			Options:    opts,
		})
		if err != nil {
			return fmt.Errorf("failed to generate schedule: %w", err)
		}

		if err := cli.WriteRecords(cmd, app, generateFlags.format, generateFlags.output, result.Records, result.Context.Roster()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Generated %d appointments for %s (run %s)\n",
			len(result.Records), generatePatient, result.RunID)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generatePatient, "patient", "p", "", "patient id (required)")
	generateCmd.Flags().StringVar(&generateProcedures, "procedures", "", "four procedures separated by , ; or - (required)")
	generateFlags.register(generateCmd.Flags())
	_ = generateCmd.MarkFlagRequired("patient")
	_ = generateCmd.MarkFlagRequired("procedures")
}
