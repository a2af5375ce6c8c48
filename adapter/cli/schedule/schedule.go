// Package schedule holds the schedule generation and validation commands.
package schedule

import (
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate and validate appointment schedules",
	Long: `Generate appointment schedules for one patient or a batch of patients,
and validate existing schedule files for double-booked group A staff.`,
}

func init() {
	Cmd.AddCommand(generateCmd)
	Cmd.AddCommand(batchCmd)
	Cmd.AddCommand(validateCmd)
}
