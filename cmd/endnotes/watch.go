package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/philong6297/endnotes/internal/config"
	"github.com/philong6297/endnotes/internal/database"
	"github.com/philong6297/endnotes/internal/log"
	"github.com/philong6297/endnotes/internal/model"
	"github.com/philong6297/endnotes/internal/pipeline"
	"github.com/philong6297/endnotes/internal/watcher"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <site-dir>",
		Short: "Process pages continuously as the generator rewrites them",
		Long: `Watch monitors a site output directory and reprocesses HTML pages as
they change. It is intended to run next to a generator in serve mode, so
edited pages get their end-notes merged as soon as they are rebuilt.

Changes are debounced: a generator rebuild touching many files results in
a single processing pass. The transforms leave already-processed pages
alone, so rewriting a page does not trigger an endless loop.

Examples:
  # Watch a site while the generator runs
  endnotes watch ./public

  # Slower coalescing for generators that write in long bursts
  endnotes watch --debounce 1s ./public`,
		Args: cobra.ExactArgs(1),
		RunE: runWatchCmd,
	}

	addProcessFlags(cmd)
	cmd.Flags().Duration("debounce", config.DefaultDebounce,
		"Delay before a burst of file changes is processed")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.Debounce, err = cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.SiteDir, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runWatch(ctx, cfg, logger)
}

// runWatch performs an initial full run and then reprocesses changed
// pages until the context is cancelled.
func runWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// Initial pass so the watch starts from a fully processed site.
	siteReport, err := processSite(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Initial pass: %d page(s), %d modified\n",
		len(siteReport.Pages), siteReport.PagesModified())

	if db != nil {
		if _, err := db.SaveRun(ctx, siteReport); err != nil {
			logger.Error("failed to save run", "error", err)
		}
	}

	handler := func(ctx context.Context, paths []string) error {
		return processChanged(ctx, cfg, db, logger, paths)
	}

	w := watcher.New(cfg.SiteDir, handler,
		watcher.WithDebounce(cfg.Debounce),
		watcher.WithLogger(logger),
	)
	return w.Watch(ctx)
}

// processChanged runs the pipeline over a batch of changed pages.
func processChanged(ctx context.Context, cfg *config.Config, db *database.ProcessDB, logger *slog.Logger, paths []string) error {
	startTime := time.Now()

	pages := make([]*model.PageReport, 0, len(paths))
	for _, group := range groupByRules(cfg, paths) {
		bp := pipeline.NewBatchProcessor(
			pipelineFactory(cfg, group.rules, db, logger),
			pipeline.WithConcurrency(cfg.Concurrency),
			pipeline.WithBatchLogger(logger),
		)

		groupPages, err := bp.ProcessBatch(ctx, cfg.SiteDir, group.paths)
		if err != nil {
			return err
		}
		pages = append(pages, groupPages...)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })

	siteReport := model.NewSiteReport(cfg.SiteDir)
	siteReport.DryRun = cfg.DryRun
	siteReport.Pages = pages
	siteReport.Duration = time.Since(startTime)

	for _, p := range pages {
		switch {
		case p.Error != nil:
			fmt.Printf("[!] %s: %s\n", p.Path, p.ErrorMessage)
		case p.Modified:
			fmt.Printf("[+] %s\n", p.Path)
		}
	}

	if db != nil {
		if _, err := db.SaveRun(ctx, siteReport); err != nil {
			logger.Error("failed to save run", "error", err)
		}
	}
	return nil
}
