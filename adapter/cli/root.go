package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

var logger *slog.Logger

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clinicflow",
	Short: "clinicflow - clinic appointment scheduling",
	Long: `clinicflow generates recurring clinic appointment schedules.

For each patient it assigns staff to every procedure of a visit, chains the
procedure times from the diagnosis stamp and guarantees that no group A staff
member is booked twice at the same time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx := context.WithValue(cmd.Context(), commandContextKey{}, info)
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		cmd.SetContext(ctx)
		logger.Debug("command start",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
		)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.Debug("command end",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
		flushEvents(cmd.Context())
		if app != nil && app.Metrics != nil {
			for _, c := range app.Metrics.Counters() {
				logger.Debug("counter", "name", c.Name, "value", c.Value)
			}
		}
	},
}

// flushEvents relays the events recorded by the command. A relay failure
// leaves them in the outbox for "events relay".
func flushEvents(ctx context.Context) {
	if app == nil || app.EventsRelay == nil || app.Config == nil || !app.Config.OutboxFlushOnExit {
		return
	}
	res, err := app.EventsRelay.Flush(ctx)
	if err != nil {
		logger.Warn("failed to relay events", "error", err)
		return
	}
	if res.Published+res.Failed+res.Dead > 0 {
		logger.Debug("events relayed", "published", res.Published, "failed", res.Failed, "dead", res.Dead)
	}
}

// Execute runs the root command with ctx and prints any error to stderr.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// RootCmd returns the root command, for tests.
func RootCmd() *cobra.Command {
	return rootCmd
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger, or the default logger before SetLogger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
