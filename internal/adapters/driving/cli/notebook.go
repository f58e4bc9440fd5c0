package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

var (
	notebookType   string
	notebookVendor string
)

var notebookCmd = &cobra.Command{
	Use:   "notebook <project-id>",
	Short: "Assemble the merged view of one snapshot type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if notebookType == "" {
			return fmt.Errorf("%w: --type is required", domain.ErrInvalidInput)
		}
		if notebookVendor != "" {
			logger.Info().Str("vendor_id", notebookVendor).Str("project_id", args[0]).Msg("vendor notebook call")
		}

		nb, err := notebookSvc.Assemble(cmd.Context(), args[0], domain.SnapshotType(notebookType))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("project %s has no %s snapshots", args[0], notebookType)
			}
			return fmt.Errorf("assembling notebook: %w", err)
		}

		out, err := json.MarshalIndent(nb, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding notebook: %w", err)
		}
		cmd.Println(string(out))
		return nil
	},
}

func init() {
	notebookCmd.Flags().StringVar(&notebookType, "type", "", "snapshot type to assemble")
	notebookCmd.Flags().StringVar(&notebookVendor, "vendor", "", "calling vendor identifier, recorded in the run log")
	rootCmd.AddCommand(notebookCmd)
}
