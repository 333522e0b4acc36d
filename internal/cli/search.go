package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codecontext/codecontext/internal/bm25"
	"github.com/codecontext/codecontext/internal/embedcoord"
	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/filecache"
	"github.com/codecontext/codecontext/internal/formatter"
	"github.com/codecontext/codecontext/internal/metadata"
	"github.com/codecontext/codecontext/internal/model"
	"github.com/codecontext/codecontext/internal/retriever"
	"github.com/codecontext/codecontext/internal/state"
)

var (
	searchProject     string
	searchLimit       int
	searchFormat      string
	searchLanguage    string
	searchFile        string
	searchType        string
	searchExpand      []string
	searchInstruction string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a hybrid search against the project's index",
	Long: `search embeds and BM25F-encodes the query, asks the store for a fused
dense+sparse result set, expands it across the relationship graph, and
prints the ranked results as text or JSON.

Examples:
  codecontext search "OrderService"
  codecontext search "auth" --language python --type code
  codecontext search "what are requirements" -i qa -t document`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchProject, "project", "p", ".", "project directory")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "text", "output format: text or json")
	searchCmd.Flags().StringVarP(&searchLanguage, "language", "l", "", "filter by programming language")
	searchCmd.Flags().StringVar(&searchFile, "file", "", "filter by exact file path")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "filter by result type: code, document")
	searchCmd.Flags().StringSliceVarP(&searchExpand, "expand", "e", nil, "expand fields: signature, snippet, content, relationships, complexity, impact, all")
	searchCmd.Flags().StringVarP(&searchInstruction, "instruction", "i", "nl2code", "instruction type: nl2code, qa, code2code")
	rootCmd.AddCommand(searchCmd)
}

var instructionQueryTypes = map[string]model.InstructionType{
	"nl2code":   model.InstructionNL2CodeQuery,
	"qa":        model.InstructionQAQuery,
	"code2code": model.InstructionCode2CodeQuery,
}

func runSearch(cmd *cobra.Command, args []string) error {
	queryText := args[0]
	ctx := cmd.Context()

	cctx, err := newContext(searchProject)
	if err != nil {
		return err
	}
	defer cctx.close()

	s, err := cctx.openStore(ctx)
	if err != nil {
		return err
	}

	provider, err := cctx.embeddingProvider()
	if err != nil {
		return err
	}
	if err := provider.Initialize(ctx); err != nil {
		return errs.Wrap(errs.Embedding, "initializing embedding provider", err)
	}

	st, err := state.Load(cctx.RepoRoot)
	if err != nil {
		return err
	}

	cfg := cctx.Config
	r := retriever.New(s, embedcoord.New(provider), bm25.NewEncoder(cfg.Indexing.FieldWeights), retriever.Config{
		EnableGraphExpansion: cfg.Search.EnableGraphExpansion,
		GraphMaxHops:         cfg.Search.GraphMaxHops,
		GraphPPRThreshold:    cfg.Search.GraphPPRThreshold,
		MaxChunksPerFile:     cfg.Search.MaxChunksPerFile,
	})

	instr, ok := instructionQueryTypes[searchInstruction]
	if !ok {
		return errs.New(errs.Validation, fmt.Sprintf("unknown instruction type %q", searchInstruction))
	}

	query := model.SearchQuery{
		Text:           queryText,
		Limit:          searchLimit,
		LanguageFilter: searchLanguage,
		FileFilter:     searchFile,
		TypeFilter:     model.TypeFilter(searchType),
		Expand:         searchExpand,
	}

	results, err := r.Search(ctx, query, st.AllRelationships(), instr)
	if err != nil {
		return err
	}

	format := formatter.FormatText
	if searchFormat == "json" {
		format = formatter.FormatJSON
	}

	files, err := filecache.New(cctx.RepoRoot)
	if err != nil {
		return err
	}
	defer files.Close()

	fm := formatter.New(s, files)
	output, err := fm.Render(ctx, results, queryText, format, searchExpand, st.AllRelationships())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), output)
	// Best effort: a project with no metadata.json yet has nothing to touch.
	_ = metadata.Touch(cctx.ProjectID, time.Now())
	return nil
}
