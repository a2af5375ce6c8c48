// Package clitest wires a CLI App on an in-memory store for command tests.
package clitest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	internalApp "github.com/felixgeelhaar/clinicflow/internal/app"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/clinicflow/pkg/config"
)

// Config returns a test configuration on a private in-memory database.
func Config() *config.Config {
	return &config.Config{
		AppEnv:               "test",
		LogLevel:             "error",
		DatabaseDriver:       "sqlite",
		SQLitePath:           sqlite.MemoryPath,
		ScheduleSeed:         42,
		ScheduleSlotsKind:    "CD",
		ScheduleMaxAttempts:  50,
		ScheduleShuffleSlots: true,
		BreakerThreshold:     5,
		BreakerTimeout:       time.Second,
	}
}

// Setup installs a fresh App as the global CLI app and removes it when the
// test ends.
func Setup(t *testing.T) (*cli.App, *internalApp.Container) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	container, err := internalApp.NewContainer(context.Background(), Config(), logger)
	require.NoError(t, err)

	a := cli.NewApp(container)
	cli.SetApp(a)
	cli.SetLogger(logger)
	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return a, container
}

// Run executes cmd's RunE with flags and args and returns what it printed.
// Flags are reset to their defaults afterwards.
func Run(t *testing.T, cmd *cobra.Command, flags map[string]string, args ...string) (string, error) {
	t.Helper()
	resetFlags(cmd)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
		resetFlags(cmd)
	})

	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value), "flag %s", name)
	}
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}
