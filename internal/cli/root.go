// Package cli wires CodeContext's cobra commands: init, index, search,
// status, list-projects, delete-project, config, and version.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd is the base command executed when codecontext is invoked
// without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "codecontext",
	Short: "Offline, per-repository semantic code search",
	Long: `CodeContext indexes a repository's source and documentation into a
local hybrid (dense + sparse) search index, then answers natural-language
queries against it without leaving your machine.`,
}

// Execute runs the root command with a background context, printing any
// error to stderr and exiting non-zero on failure. cmd/codecontext/main.go
// calls ExecuteContext instead.
func Execute() {
	ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx as every subcommand's
// base context, so an interrupt signal cancels whichever sync or
// search is in flight.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
}
