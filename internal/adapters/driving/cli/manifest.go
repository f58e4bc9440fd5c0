package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest <project-id>",
	Short: "Print a project's manifest",
	Long: `Prints the per-project manifest: snapshot counts by type and the
known source files. A missing manifest is rebuilt from the snapshot
store before printing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		projectID := args[0]

		m, err := manifestSvc.Get(ctx, projectID)
		if errors.Is(err, domain.ErrNotFound) {
			m, err = manifestSvc.Rebuild(ctx, projectID)
		}
		if err != nil {
			return fmt.Errorf("loading manifest: %w", err)
		}

		out, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		cmd.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}
