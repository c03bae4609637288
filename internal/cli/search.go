package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"codechunk/internal/adapter/search"
	"codechunk/internal/domain"
)

var (
	searchTopK int
	searchJSON bool
	searchKind string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank cached chunks against a query",
	Long: `Search the chunks of every cached file with BM25. Terms found in a
chunk's name rank it higher. Run 'codechunk index' first.

Examples:
  codechunk search "load config"
  codechunk search useAuth --kind hook --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "only return chunks of this kind")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if searchKind != "" && !domain.ChunkKind(searchKind).Valid() {
		return fmt.Errorf("unknown chunk kind %q", searchKind)
	}

	sess, err := openSession(GetRootDir())
	if err != nil {
		return err
	}
	defer sess.Close()

	ix := search.NewIndex(search.NewTokenizer(), cfg.Search.K1, cfg.Search.B, cfg.Search.NameBoost)
	if err := ix.AddStore(sess.store); err != nil {
		return err
	}
	if ix.Len() == 0 {
		return fmt.Errorf("no cached chunks. Run 'codechunk index' first")
	}

	topK := cfg.Search.TopK
	if searchTopK > 0 {
		topK = searchTopK
	}
	query := strings.Join(args, " ")

	var hits []search.Hit
	for _, h := range ix.Search(query, 0) {
		if searchKind != "" && string(h.Chunk.Kind) != searchKind {
			continue
		}
		hits = append(hits, h)
		if topK > 0 && len(hits) == topK {
			break
		}
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		if hits == nil {
			hits = []search.Hit{}
		}
		return writeJSON(out, hits)
	}
	if len(hits) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d results for: %s\n\n", len(hits), query)
	for i, h := range hits {
		path := h.Path
		if rel, err := filepath.Rel(GetRootDir(), h.Path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
		fmt.Fprintf(out, "[%d] %s:L%d-%d %s %s (score: %.2f)\n",
			i+1, path, h.Chunk.StartLine, h.Chunk.EndLine, h.Chunk.Kind, h.Chunk.Name, h.Score)
	}
	return nil
}
