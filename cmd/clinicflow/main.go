package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/adapter/cli/entry"
	"github.com/felixgeelhaar/clinicflow/adapter/cli/events"
	"github.com/felixgeelhaar/clinicflow/adapter/cli/leave"
	"github.com/felixgeelhaar/clinicflow/adapter/cli/mcp"
	"github.com/felixgeelhaar/clinicflow/adapter/cli/schedule"
	"github.com/felixgeelhaar/clinicflow/adapter/cli/staff"
	"github.com/felixgeelhaar/clinicflow/internal/app"
	"github.com/felixgeelhaar/clinicflow/pkg/config"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancel running commands on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(observability.DefaultLogConfig()).Error("failed to load config", "error", err)
		return 1
	}

	logCfg := observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	logCfg.ServiceVersion = cli.Version
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	// Commands that need the store report ErrNotInitialized when this fails,
	// so version and help still work.
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
	} else {
		defer container.Close()
		cli.SetApp(cli.NewApp(container))
	}

	cli.AddCommand(schedule.Cmd)
	cli.AddCommand(staff.Cmd)
	cli.AddCommand(leave.Cmd)
	cli.AddCommand(entry.Cmd)
	cli.AddCommand(events.Cmd)
	cli.AddCommand(mcp.Cmd)

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
