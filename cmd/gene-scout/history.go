// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gene-scout/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect previously recorded runs",
	Long: `History lists or shows runs recorded by the query command in the local
SQLite history database.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print the full result payload of one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (default 20)")
	historyListCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.PersistentFlags().String("history-dir", "", `history database directory (default "history")`)

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-16s  %-5s  %-8s  %s\n", "ID", "Query", "Kind", "Sources", "When")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 60))
	for _, e := range entries {
		query := e.Query
		if len(query) > 16 {
			query = query[:13] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-16s  %-5s  %-8d  %s\n",
			e.ID, query, e.Kind, len(e.SourcesUsed), e.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	var buf map[string]any
	if err := json.Unmarshal(entry.Payload, &buf); err != nil {
		return fmt.Errorf("stored payload for run %d is corrupt: %w", id, err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(buf)
}
