// Package events holds the commands that inspect and relay the event outbox.
package events

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/outbox"
)

// Cmd is the events command group
var Cmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect and relay scheduling events",
	Long: `Changes to leaves, staff availability and manual entries, and every
schedule run, are recorded as events in the outbox of the local store. Each
command relays pending events on exit. The relay command delivers them
continuously, to RabbitMQ when RABBITMQ_URL is set.`,
}

var relayOnce bool

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Deliver pending events",
	Long: `Deliver pending events until interrupted. With --once, deliver what is
due and exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		if app.EventsRelay == nil {
			return cli.ErrNotInitialized
		}
		if relayOnce {
			res, err := app.EventsRelay.Flush(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to relay events: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Relayed %d events (%d failed, %d dead-lettered)\n", res.Published, res.Failed, res.Dead)
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Relaying events, press Ctrl+C to stop.")
		app.EventsRelay.Start(cmd.Context())
		<-cmd.Context().Done()
		app.EventsRelay.Stop()
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show outbox counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		counts, err := app.Outbox.Counts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count events: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Pending:   %d\n", counts.Pending)
		fmt.Fprintf(out, "Published: %d\n", counts.Published)
		fmt.Fprintf(out, "Dead:      %d\n", counts.Dead)
		return nil
	},
}

var deadLimit int

var deadCmd = &cobra.Command{
	Use:   "dead",
	Short: "List dead-lettered events",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		msgs, err := app.Outbox.GetDead(cmd.Context(), deadLimit)
		if err != nil {
			return fmt.Errorf("failed to list dead events: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(msgs) == 0 {
			fmt.Fprintln(out, "No dead-lettered events.")
			return nil
		}
		for _, m := range msgs {
			fmt.Fprintf(out, "#%-5d %-28s retries=%d  %s\n", m.ID, m.RoutingKey, m.RetryCount, m.DeadLetterReason)
		}
		return nil
	},
}

var requeueCmd = &cobra.Command{
	Use:   "requeue <id>",
	Short: "Queue a dead-lettered event for delivery again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid event id %q", args[0])
		}
		if err := app.Outbox.Requeue(cmd.Context(), id); err != nil {
			if errors.Is(err, outbox.ErrMessageNotFound) {
				return fmt.Errorf("no dead-lettered event %d", id)
			}
			return fmt.Errorf("failed to requeue event: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Requeued event %d\n", id)
		return nil
	},
}

var pruneOlderThan time.Duration

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete delivered events",
	Long: `Delete delivered events older than --older-than, by default the
OUTBOX_RETENTION setting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		age := pruneOlderThan
		if age <= 0 && app.Config != nil {
			age = app.Config.OutboxRetention
		}
		n, err := app.Outbox.DeleteOld(cmd.Context(), time.Now().Add(-age))
		if err != nil {
			return fmt.Errorf("failed to prune events: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d events\n", n)
		return nil
	},
}

func init() {
	relayCmd.Flags().BoolVar(&relayOnce, "once", false, "deliver due events and exit")
	deadCmd.Flags().IntVar(&deadLimit, "limit", 50, "maximum events to list")
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "minimum age of deleted events")

	Cmd.AddCommand(relayCmd)
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(deadCmd)
	Cmd.AddCommand(requeueCmd)
	Cmd.AddCommand(pruneCmd)
}
