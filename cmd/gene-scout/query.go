// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gene-scout/internal/collect"
	"github.com/pdiddy/gene-scout/internal/history"
	"github.com/pdiddy/gene-scout/internal/report"
	"github.com/pdiddy/gene-scout/internal/summary"
	"github.com/pdiddy/gene-scout/pkg/types"
)

const (
	defaultUserAgent  = "gene-scout/0.1"
	defaultModel      = "claude-sonnet-4-5-20250929"
	defaultHistoryDir = "history"
)

var queryCmd = &cobra.Command{
	Use:   "query [gene symbol or SNP id]",
	Short: "Collect and summarize annotation data for a gene or SNP",
	Long: `Query classifies its argument as a gene symbol or SNP identifier
(anything starting with "rs"), collects annotation data from the applicable
public sources, and prints the merged result with an AI-generated summary.

Sources that fail are skipped with a warning on stderr; the run succeeds
with whatever data remains. Without an Anthropic API key (flag, config, or
.secrets/anthropic-api-key) the summary degrades to a fixed notice.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Bool("json", false, "print the result payload as JSON")
	queryCmd.Flags().Bool("yaml", false, "print the result payload as YAML")
	queryCmd.Flags().String("out", "", "also save a YAML report file to this path")
	queryCmd.Flags().Bool("no-summary", false, "skip the AI summary")
	queryCmd.Flags().Bool("no-history", false, "do not record this run in the history database")
	queryCmd.Flags().String("model", "", "AI model for summarization")
	queryCmd.Flags().Duration("timeout", 0, "overall deadline for the run (0 means per-request timeouts only)")
	queryCmd.Flags().String("history-dir", "", `history database directory (default "history")`)

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	rawQuery := args[0]
	ctx := cmd.Context()
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cfg := types.CollectConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: defaultUserAgent},
		NCBIAPIKey: secretDefault("ncbi-api-key", viper.GetString("collect.ncbi_api_key")),
	}

	collector := collect.NewCollector(&http.Client{}, cfg)
	rec := collector.CollectAll(ctx, rawQuery, os.Stderr)

	var summarizer summary.Summarizer
	if noSummary, _ := cmd.Flags().GetBool("no-summary"); !noSummary {
		if apiKey := secretDefault("anthropic-api-key", viper.GetString("summary.api_key")); apiKey != "" {
			model, _ := cmd.Flags().GetString("model")
			if model == "" {
				model = viper.GetString("summary.model")
			}
			if model == "" {
				model = defaultModel
			}
			summarizer = &summary.ClaudeSummarizer{APIKey: apiKey, Model: model}
		}
	}
	summaryText := summary.Text(ctx, summarizer, rec)

	payload := report.Assemble(rawQuery, rec, summaryText)

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		if err := recordRun(cmd, payload); err != nil {
			// History is a convenience log; its failure must not fail the run.
			fmt.Fprintf(os.Stderr, "warning: could not record run: %v\n", err)
		}
	}

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		if err := report.WriteReportFile(outPath, payload); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outPath)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	yamlOut, _ := cmd.Flags().GetBool("yaml")
	switch {
	case jsonOut:
		return report.WriteJSON(payload, os.Stdout)
	case yamlOut:
		return report.WriteYAML(payload, os.Stdout)
	default:
		report.FormatText(payload, os.Stdout)
		return nil
	}
}

func recordRun(cmd *cobra.Command, payload types.ResultPayload) error {
	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Record(cmd.Context(), payload)
	return err
}

// historyConfig resolves the history settings from flag, config file, and
// default, in that order.
func historyConfig(cmd *cobra.Command) types.HistoryConfig {
	dir, _ := cmd.Flags().GetString("history-dir")
	if dir == "" {
		dir = viper.GetString("history.dir")
	}
	if dir == "" {
		dir = defaultHistoryDir
	}
	return types.HistoryConfig{
		Dir:        dir,
		MaxResults: viper.GetInt("history.max_results"),
	}
}
