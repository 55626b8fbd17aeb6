package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/output"
)

var rateLimitStatusOutput string

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Inspect the provider rate limiter",
}

var rateLimitStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured rate limiter window",
	Long: `Status shows the limiter as configured for this process. The window
is per-process: a fresh CLI invocation starts with an empty window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(rateLimitStatusOutput)
		if err != nil {
			return err
		}

		p, err := openStoreOnly(cmd.Context())
		if err != nil {
			return err
		}
		defer p.close()

		st := p.limiter.Status()
		if format == output.FormatJSON {
			rendered, err := output.StatusJSON(st)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
			return nil
		}

		fmt.Print(output.FormatStatus(st))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rateLimitCmd)
	rateLimitCmd.AddCommand(rateLimitStatusCmd)

	rateLimitStatusCmd.Flags().StringVar(&rateLimitStatusOutput, "output-format", string(output.FormatTable), "Output format: table|json")
}
