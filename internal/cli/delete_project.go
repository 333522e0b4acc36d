package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codecontext/codecontext/internal/metadata"
)

var deleteProjectYes bool

var deleteProjectCmd = &cobra.Command{
	Use:   "delete-project <id>",
	Short: "Delete a project's indexed data",
	Long:  `delete-project removes a project's metadata and its entire store directory. This cannot be undone.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteProject,
}

func init() {
	deleteProjectCmd.Flags().BoolVarP(&deleteProjectYes, "yes", "y", false, "skip confirmation")
	rootCmd.AddCommand(deleteProjectCmd)
}

func runDeleteProject(cmd *cobra.Command, args []string) error {
	projectID := args[0]

	meta, err := metadata.Get(projectID)
	if err != nil {
		return err
	}

	if !deleteProjectYes {
		if !confirm(cmd, fmt.Sprintf("Delete all indexed data for %q (%s)?", meta.Name, projectID)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := metadata.Delete(projectID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", projectID)
	return nil
}
