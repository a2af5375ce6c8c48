package mcp

import (
	"io"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/pkg/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, "test", quietLogger())
	require.Error(t, err)

	srv, err := NewServer(&cli.App{}, "test", quietLogger())
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)
	assert.Len(t, tools, 7)
}

func TestMiddleware_AddsAuthWithToken(t *testing.T) {
	open := Middleware(&config.Config{AppEnv: "test"}, quietLogger())
	secured := Middleware(&config.Config{AppEnv: "test", MCPAuthToken: "secret"}, quietLogger())
	assert.Len(t, secured, len(open)+1)
}

func TestServe_RequiresConfig(t *testing.T) {
	err := Serve(t.Context(), nil, &cli.App{}, quietLogger())
	assert.EqualError(t, err, "config is required")
}
