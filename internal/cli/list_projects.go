package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codecontext/codecontext/internal/metadata"
)

var listProjectsCmd = &cobra.Command{
	Use:   "list-projects",
	Short: "List every project indexed on this machine",
	RunE:  runListProjects,
}

func init() {
	rootCmd.AddCommand(listProjectsCmd)
}

func runListProjects(cmd *cobra.Command, args []string) error {
	projects, err := metadata.List()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No indexed projects found.")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, p := range projects {
		fmt.Fprintf(out, "%s\n", p.Name)
		fmt.Fprintf(out, "  id:          %s\n", p.ProjectID)
		fmt.Fprintf(out, "  source:      %s\n", p.SourcePath)
		if p.GitOrigin != "" {
			fmt.Fprintf(out, "  origin:      %s\n", p.GitOrigin)
		}
		fmt.Fprintf(out, "  indexed at:  %s\n", p.IndexedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "  last used:   %s\n", p.LastUsed.Format("2006-01-02 15:04:05"))
	}
	return nil
}
