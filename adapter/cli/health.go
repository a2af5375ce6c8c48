package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the database and leave lookup health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		health := app.Health.Check(cmd.Context())

		out := cmd.OutOrStdout()
		if healthJSON {
			data, err := health.ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
		} else {
			fmt.Fprintf(out, "status: %s\n", health.Status)
			for _, c := range health.Checks {
				fmt.Fprintf(out, "  %-14s %-9s %s\n", c.Name, c.Status, c.Message)
			}
		}
		if health.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(healthCmd)
}
