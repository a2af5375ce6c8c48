package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers prompts for the common scheduling workflow.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}

	srv.Prompt("plan_week").
		Description("Schedule a group of patients for a date range and check the result for conflicts.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			start, end := args["start"], args["end"]
			if start == "" {
				start = "<start DD-MM-YYYY>"
			}
			if end == "" {
				end = start
			}
			return &mcp.PromptResult{
				Description: "Weekly scheduling session",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Plan the clinic appointments from %s to %s.

1. Read clinicflow://catalog for the procedures and default slots.
2. Use staff.list to see who is enabled, and leave.check for anyone in doubt.
3. Use schedule.batch with the patients I give you and their procedures.
4. Run schedule.validate on the returned csv with include_manual set, and
   report any conflict together with the staff member involved.`, start, end),
						},
					},
				},
			}, nil
		})

	return nil
}
