package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codecontext/codecontext/internal/metadata"
)

var statusProject string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the indexed state of a project",
	Long:  `status reports the last sync's commit, object count, and content count for the target project.`,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusProject, "project", "p", ".", "project directory")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cctx, err := newContext(statusProject)
	if err != nil {
		return err
	}
	defer cctx.close()

	s, err := cctx.openStore(ctx)
	if err != nil {
		return err
	}

	indexState, err := s.GetIndexState(ctx)
	if err != nil {
		return err
	}
	stats, err := s.GetStatistics(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project:    %s\n", cctx.projectName())
	fmt.Fprintf(out, "ID:         %s\n", cctx.ProjectID)
	fmt.Fprintf(out, "Root:       %s\n", cctx.RepoRoot)
	if indexState == nil || indexState.UpdatedAt.IsZero() {
		fmt.Fprintln(out, "Indexed:    never")
		return nil
	}
	fmt.Fprintf(out, "Commit:     %s\n", indexState.LastCommitHash)
	fmt.Fprintf(out, "Files:      %d\n", indexState.TotalFiles)
	fmt.Fprintf(out, "Objects:    %d\n", indexState.TotalObjects)
	fmt.Fprintf(out, "Content:    %d\n", stats.ContentCount)
	fmt.Fprintf(out, "Languages:  %v\n", indexState.Languages)
	fmt.Fprintf(out, "Updated:    %s\n", indexState.UpdatedAt.Format("2006-01-02 15:04:05"))

	if meta, err := metadata.Get(cctx.ProjectID); err == nil {
		fmt.Fprintf(out, "Last used:  %s\n", meta.LastUsed.Format("2006-01-02 15:04:05"))
	}
	return nil
}
