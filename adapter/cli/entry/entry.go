// Package entry holds the manual appointment entry commands.
package entry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

// Cmd is the entry command group
var Cmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage manually entered appointments",
	Long: `Store appointments that were arranged by hand. Manual entries are
expanded with the same procedure timing as generated appointments and can
be included when validating a schedule.`,
}

var (
	addPatient    string
	addProcedures string
	addStaff      string
	addDate       string
	addTime       string
	addNotes      string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a manual appointment",
	Long: `Add a manual appointment. --staff lists the staff of positions 1, 2
and 3: group A, group B, group A.

Examples:
  clinicflow entry add --patient BN001 --procedures "điện,thủy,xoa,giác" \
    --staff duy,hiền,lya --date 20-10-2026 --time 08:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		procs, err := app.Clinic.Catalog.ParseProcedures(addProcedures)
		if err != nil {
			return err
		}
		date, err := domain.ParseDate(addDate)
		if err != nil {
			return err
		}
		at, err := domain.ParseClock(addTime)
		if err != nil {
			return err
		}

		entry, err := app.ManualEntryHandler.Add(cmd.Context(), commands.AddManualEntryCommand{
			PatientID:  addPatient,
			Procedures: procs,
			Staff:      strings.Split(strings.ReplaceAll(addStaff, ";", ","), ","),
			Date:       date,
			Time:       at,
			Notes:      addNotes,
		})
		if err != nil {
			return fmt.Errorf("failed to add entry: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d for %s on %s %s\n",
			entry.ID, entry.PatientID, entry.Date.Format(domain.DateLayout), entry.Time)
		return nil
	},
}

var listPatient string

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List manual appointments, newest first",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		entries, err := app.ListManualEntriesHandler.Handle(cmd.Context(), listPatient)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No manual entries found.")
			return nil
		}
		fmt.Fprintf(out, "Manual entries (%d):\n", len(entries))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, e := range entries {
			fmt.Fprintf(out, "#%-4d %-8s %s %s  %s  [%s]\n", e.ID, e.PatientID, e.Date, e.Time, e.Procedures, e.Staff)
			if e.Notes != "" {
				fmt.Fprintf(out, "      %s\n", e.Notes)
			}
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Short:   "Remove a manual appointment",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		if err := app.ManualEntryHandler.Remove(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to remove entry: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %d\n", id)
		return nil
	},
}

var (
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export manual appointments as CSV, JSON or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		sc, err := app.Engines.Context(cmd.Context())
		if err != nil {
			return err
		}
		records, err := commands.ManualRecords(cmd.Context(), app.ManualEntries, sc)
		if err != nil {
			return fmt.Errorf("failed to load entries: %w", err)
		}
		return cli.WriteRecords(cmd, app, exportFormat, exportOutput, commands.MergeRecords(nil, records), sc.Roster())
	},
}

func init() {
	addCmd.Flags().StringVarP(&addPatient, "patient", "p", "", "patient id (required)")
	addCmd.Flags().StringVar(&addProcedures, "procedures", "", "four procedures (required)")
	addCmd.Flags().StringVar(&addStaff, "staff", "", "staff keys of positions 1, 2 and 3 (required)")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "date (DD-MM-YYYY, required)")
	addCmd.Flags().StringVarP(&addTime, "time", "t", "", "first procedure start time (HH:MM, required)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free text notes")
	for _, name := range []string{"patient", "procedures", "staff", "date", "time"} {
		_ = addCmd.MarkFlagRequired(name)
	}

	listCmd.Flags().StringVarP(&listPatient, "patient", "p", "", "only entries of this patient")

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "output format: csv, json, xlsx")

	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(exportCmd)
}
