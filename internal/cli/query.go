package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"invoicerag/internal/adapter/store"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search indexed invoices",
	Long: `Run a similarity search against the index and print the matching chunks.
Useful for checking what generation would retrieve for a given request.

Examples:
  invoicerag query -q "acme consulting"
  invoicerag query -q "hosting fees" --top-k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

type queryResult struct {
	Filename string  `json:"filename"`
	DocID    string  `json:"doc_id"`
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	topK := cfg.Retrieval.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	hits, err := svc.index.Query(queryText, topK, cfg.Retrieval.DistanceThreshold)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := make([]queryResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, queryResult{
			Filename: hit.Metadata[store.MetaFilename],
			DocID:    hit.Metadata[store.MetaDocID],
			Distance: hit.Distance,
			Text:     hit.Text,
		})
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. %s (doc %s, distance %.4f)\n", i+1, r.Filename, r.DocID, r.Distance)
		fmt.Println(indent(r.Text, "   "))
	}
	return nil
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
