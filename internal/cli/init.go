package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/codecontext/codecontext/internal/config"
	"github.com/codecontext/codecontext/internal/errs"
)

var (
	initYes bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a .codecontext.toml for a project",
	Long: `init writes a .codecontext.toml in the target directory (the current
directory by default) with the default include/exclude patterns, ready
to edit before the first "codecontext index".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "overwrite an existing .codecontext.toml without asking")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	repoRoot, err := filepath.Abs(dir)
	if err != nil {
		return errs.Wrap(errs.Configuration, "resolving project path", err)
	}

	configPath := filepath.Join(repoRoot, config.ProjectConfigFileName)
	if _, statErr := os.Stat(configPath); statErr == nil && !initYes {
		if !confirm(cmd, fmt.Sprintf("%s already exists. Overwrite?", configPath)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	defaults := config.Default()
	doc := struct {
		Project config.ProjectConfig `toml:"project"`
	}{
		Project: config.ProjectConfig{
			Name:    filepath.Base(repoRoot),
			Include: defaults.Project.Include,
			Exclude: defaults.Project.Exclude,
		},
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return errs.Wrap(errs.Configuration, "encoding project config", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errs.Wrap(errs.Configuration, "writing project config", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
	fmt.Fprintln(cmd.OutOrStdout(), "Next steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "  codecontext index")
	fmt.Fprintln(cmd.OutOrStdout(), `  codecontext search "your query"`)
	return nil
}

// confirm asks a y/N question on stdin, defaulting to no. Extracted so
// tests can swap cmd.InOrStdin() for a scripted reader.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch line {
	case "y\n", "Y\n", "yes\n", "Yes\n":
		return true
	default:
		return false
	}
}
