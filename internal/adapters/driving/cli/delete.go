package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete all data for a project",
	Long: `Removes a project's snapshots, its manifest and its working
directory. Snapshot and manifest removal is a single transaction;
a working directory that cannot be removed afterwards is reported
as a partial deletion.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := pipeline.DeleteProject(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, domain.ErrDeletionPartial) {
				cmd.Printf("Deleted %d snapshots, but: %v\n", count, err)
				return err
			}
			return fmt.Errorf("deleting project: %w", err)
		}

		cmd.Printf("Deleted %d snapshots for project %s.\n", count, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
