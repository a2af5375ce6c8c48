package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
	"github.com/felixgeelhaar/clinicflow/adapter/cli/clitest"
)

func TestServe_RequiresApp(t *testing.T) {
	cli.SetApp(nil)
	_, err := clitest.Run(t, serveCmd, nil)
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}
