// Package mcp exposes clinicflow scheduling over the Model Context Protocol.
package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/clinicflow/adapter/cli"
)

// errNoStore is returned by tools that need the wired application.
var errNoStore = errors.New("clinicflow requires a database connection")

// ToolDependencies provides handlers for the MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterTools registers the tools that mirror the CLI commands.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	t := &tools{app: deps.App}
	registerScheduleTools(srv, t)
	registerStaffTools(srv, t)
	return nil
}

// tools implements the tool handlers on the CLI application.
type tools struct {
	app *cli.App
}
