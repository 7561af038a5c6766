package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/philong6297/endnotes/internal/config"
	"github.com/philong6297/endnotes/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command lists past processing runs recorded in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past processing runs",
		Long: `History displays previous processing runs recorded in the database.

Each run shows when it happened, which site directory was processed, how
many pages were modified or skipped, and how many audit findings were
produced. Dry runs are listed but never record page hashes.

Examples:
  # Show the most recent runs
  endnotes history

  # Show the last three runs
  endnotes history --limit 3

  # Output run history as JSON
  endnotes history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output run history in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Refuse to create the database: history over an empty database is
	// always empty, and a read-only command should not leave state behind.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		return fmt.Errorf("no run history found (run 'endnotes process' first): %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	printRunTable(cmd, runs)
	return nil
}

// printRunTable writes the run history as an aligned text table.
func printRunTable(cmd *cobra.Command, runs []database.RunSummary) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%-5s %-20s %-10s %8s %9s %8s %9s %s\n",
		"ID", "Date", "Duration", "Pages", "Modified", "Skipped", "Findings", "Site")
	for _, run := range runs {
		id := strconv.FormatInt(run.ID, 10)
		if run.DryRun {
			id += "*"
		}
		fmt.Fprintf(out, "%-5s %-20s %-10s %8d %9d %8d %9d %s\n",
			id,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration.Round(time.Millisecond),
			run.PagesTotal,
			run.PagesModified,
			run.PagesSkipped,
			run.Findings,
			run.SiteDir,
		)
	}
	fmt.Fprintln(out, "\n* dry run")
}
