package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/codecontext/codecontext/internal/sync"
)

var (
	indexIncremental bool
	indexForce       bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Sync a repository's code and docs into the local search index",
	Long: `index scans the target repository (the current directory by default),
parses its code and documentation, embeds and BM25F-encodes every
chunk, and upserts the result into the project's local store.

By default it runs a full sync. --incremental re-syncs only the files
git reports changed since the last indexed commit, falling back to a
full sync automatically when there is no prior checkpoint. --force
re-embeds and re-encodes every included file even when its checksum
matches the last sync, ignoring --incremental.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexIncremental, "incremental", false, "only re-sync files changed since the last indexed commit")
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "re-embed every included file, ignoring checksums and --incremental")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	repoPath := "."
	if len(args) == 1 {
		repoPath = args[0]
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cctx, err := newContext(repoPath)
	if err != nil {
		return err
	}
	defer cctx.close()

	deps, err := cctx.syncDeps(ctx)
	if err != nil {
		return err
	}

	var engine sync.Engine
	switch {
	case indexForce:
		full := sync.NewFullSyncer(deps)
		full.Force = true
		engine = full
	case indexIncremental:
		engine = sync.NewIncrementalSyncer(deps)
	default:
		engine = sync.NewFullSyncer(deps)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Indexing "+cctx.RepoRoot),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()

	start := time.Now()
	indexState, err := engine.Sync(ctx, cctx.RepoRoot)
	close(stop)
	<-stopped
	bar.Finish()
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files (%d objects) in %s\n",
		indexState.TotalFiles, indexState.TotalObjects, time.Since(start).Round(time.Millisecond))
	if indexState.LastCommitHash != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", indexState.LastCommitHash)
	}
	if len(indexState.Languages) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Languages: %v\n", indexState.Languages)
	}
	return nil
}
