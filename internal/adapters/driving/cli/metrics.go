package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print aggregate snapshot metrics across all projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		agg, err := metricsSvc.Aggregate(cmd.Context(), cfg.RecentWindow)
		if err != nil {
			return fmt.Errorf("aggregating metrics: %w", err)
		}

		out, err := json.MarshalIndent(agg, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
		cmd.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
