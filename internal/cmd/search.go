package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docsage/docsage/internal/observability"
	"github.com/docsage/docsage/internal/output"
)

var (
	searchOutput string
	searchTopK   int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored chunks by similarity",
	Long: `Search embeds the query and ranks stored chunks by cosine
similarity. The query embedding call counts against the rate limit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(searchOutput)
		if err != nil {
			return err
		}

		p, err := newPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer p.close()

		query := args[0]
		observability.CLILogger.Debug("Searching",
			zap.String("query", query),
			zap.Int("k", searchTopK))

		results, err := p.newSearcher().Search(cmd.Context(), query, searchTopK)
		if err != nil {
			return err
		}

		if format == output.FormatJSON {
			rendered, err := output.SearchResultsJSON(results)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
			return nil
		}

		fmt.Println(output.FormatSearchResults(results))
		fmt.Print(output.FormatStatus(p.limiter.Status()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchOutput, "output-format", string(output.FormatTable), "Output format: table|json")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
}
