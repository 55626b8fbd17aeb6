package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docsage/docsage/internal/observability"
	"github.com/docsage/docsage/internal/output"
)

var ingestOutput string

var ingestCmd = &cobra.Command{
	Use:   "ingest <pdf>",
	Short: "Ingest a PDF into the vector store",
	Long: `Ingest extracts text from a PDF, splits it into overlapping chunks,
embeds the chunks in rate-limited batches, and stores the vectors.
Re-ingesting the same file replaces its previous chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(ingestOutput)
		if err != nil {
			return err
		}

		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("pdf not found: %s", path)
		}

		p, err := newPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer p.close()

		observability.CLILogger.Info("Starting ingestion",
			zap.String("path", path),
			zap.String("provider", p.provider.ProviderID))

		ingestor := p.newIngestor()
		ingestor.Progress = func(batch, totalBatches int) {
			observability.CLILogger.Info("Batch processed",
				zap.Int("batch", batch),
				zap.Int("total_batches", totalBatches))
		}

		report, err := ingestor.Ingest(cmd.Context(), path)
		if err != nil {
			return err
		}

		if format == output.FormatJSON {
			rendered, err := output.IngestReportJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
			return nil
		}

		fmt.Print(output.FormatIngestReport(report))
		fmt.Print(output.FormatStatus(p.limiter.Status()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestOutput, "output-format", string(output.FormatTable), "Output format: table|json")
}
