// Package leave holds the staff leave commands.
package leave

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	scheduling "github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/application/commands"
)

// Cmd is the leave command group
var Cmd = &cobra.Command{
	Use:   "leave",
	Short: "Manage staff leave",
	Long: `Record dated and weekly leaves. A staff member on leave is not
assigned to appointments starting in the covered session.

Sessions: morning (07:00-13:00), afternoon (13:00-18:00), full_day.`,
}

var (
	leaveSession string
	leaveReason  string
)

var addCmd = &cobra.Command{
	Use:   "add <staff> <date>",
	Short: "Add a leave on one date",
	Long: `Add a leave on one date (DD-MM-YYYY).

Examples:
  clinicflow leave add duy 20-10-2026
  clinicflow leave add lya 21-10-2026 --session afternoon --reason training`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		date, err := scheduling.ParseDate(args[1])
		if err != nil {
			return err
		}
		id, err := app.LeaveHandler.AddLeave(cmd.Context(), commands.AddLeaveCommand{
			StaffKey: args[0],
			Date:     date,
			Session:  leaveSession,
			Reason:   leaveReason,
		})
		if err != nil {
			return fmt.Errorf("failed to add leave: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added leave %d for %s on %s\n", id, args[0], date.Format(scheduling.DateLayout))
		return nil
	},
}

var addWeeklyCmd = &cobra.Command{
	Use:   "add-weekly <staff> <weekday>",
	Short: "Add a leave recurring every week",
	Long: `Add a leave recurring on a weekday. The weekday is a name (monday,
mon) or a number from 0 (Monday) to 6 (Sunday).

Examples:
  clinicflow leave add-weekly quân saturday --session afternoon`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		weekday, err := ParseWeekday(args[1])
		if err != nil {
			return err
		}
		id, err := app.LeaveHandler.AddWeeklyLeave(cmd.Context(), commands.AddWeeklyLeaveCommand{
			StaffKey: args[0],
			Weekday:  weekday,
			Session:  leaveSession,
			Reason:   leaveReason,
		})
		if err != nil {
			return fmt.Errorf("failed to add weekly leave: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added weekly leave %d for %s every %s\n", id, args[0], weekdayNames[weekday])
		return nil
	},
}

var (
	listFrom string
	listTo   string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List dated and weekly leaves",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		var from, to time.Time
		if listFrom != "" {
			if from, err = scheduling.ParseDate(listFrom); err != nil {
				return err
			}
		}
		if listTo != "" {
			if to, err = scheduling.ParseDate(listTo); err != nil {
				return err
			}
		}
		cal, err := app.ListLeavesHandler.Handle(cmd.Context(), from, to)
		if err != nil {
			return fmt.Errorf("failed to list leaves: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Dated leaves (%d):\n", len(cal.Dated))
		for _, l := range cal.Dated {
			fmt.Fprintf(out, "  #%-4d %-8s %s  %-10s %s\n", l.ID, l.StaffKey, l.Date.Format(scheduling.DateLayout), l.Session.Label(), l.Reason)
		}
		fmt.Fprintf(out, "Weekly leaves (%d):\n", len(cal.Weekly))
		for _, l := range cal.Weekly {
			fmt.Fprintf(out, "  #%-4d %-8s %-10s %-10s %s\n", l.ID, l.StaffKey, weekdayNames[l.Weekday], l.Session.Label(), l.Reason)
		}
		return nil
	},
}

var removeWeekly bool

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Short:   "Remove a leave by id",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid leave id %q", args[0])
		}
		if err := app.LeaveHandler.RemoveLeave(cmd.Context(), commands.RemoveLeaveCommand{ID: id, Weekly: removeWeekly}); err != nil {
			return fmt.Errorf("failed to remove leave: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed leave %d\n", id)
		return nil
	},
}

var checkTime string

var checkCmd = &cobra.Command{
	Use:   "check <date> <staff>...",
	Short: "Show whether staff can work at a time",
	Long: `Show whether staff can work an appointment starting at --time on a date.

Examples:
  clinicflow leave check 20-10-2026 duy lya --time 13:30`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		date, err := scheduling.ParseDate(args[0])
		if err != nil {
			return err
		}
		at, err := scheduling.ParseClock(checkTime)
		if err != nil {
			return err
		}
		results, err := app.CheckAvailabilityHandler.Handle(cmd.Context(), args[1:], date, at.Hour())
		if err != nil {
			return fmt.Errorf("failed to check availability: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, r := range results {
			if r.Available {
				fmt.Fprintf(out, "%-8s available\n", r.StaffKey)
				continue
			}
			fmt.Fprintf(out, "%-8s %s\n", r.StaffKey, r.Reason)
		}
		return nil
	},
}

var weekdayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ParseWeekday accepts an English day name, its three letter prefix or a
// number from 0 (Monday) to 6 (Sunday).
func ParseWeekday(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday must be between 0 (Monday) and 6 (Sunday), got %d", n)
		}
		return n, nil
	}
	for i, name := range weekdayNames {
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func init() {
	for _, c := range []*cobra.Command{addCmd, addWeeklyCmd} {
		c.Flags().StringVarP(&leaveSession, "session", "s", "full_day", "session: morning, afternoon, full_day")
		c.Flags().StringVarP(&leaveReason, "reason", "r", "", "reason shown when the leave blocks an assignment")
	}
	listCmd.Flags().StringVar(&listFrom, "from", "", "only dated leaves on or after this date")
	listCmd.Flags().StringVar(&listTo, "to", "", "only dated leaves on or before this date")
	removeCmd.Flags().BoolVar(&removeWeekly, "weekly", false, "the id is a weekly leave")
	checkCmd.Flags().StringVarP(&checkTime, "time", "t", "08:00", "appointment start time (HH:MM)")

	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(addWeeklyCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(checkCmd)
}
