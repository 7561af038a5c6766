package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/philong6297/endnotes/internal/audit"
	"github.com/philong6297/endnotes/internal/config"
	"github.com/philong6297/endnotes/internal/database"
	"github.com/philong6297/endnotes/internal/log"
	"github.com/philong6297/endnotes/internal/model"
	"github.com/philong6297/endnotes/internal/pipeline"
	"github.com/philong6297/endnotes/internal/report"
	"github.com/philong6297/endnotes/internal/scanner"
	"github.com/philong6297/endnotes/internal/transform"
	"github.com/spf13/cobra"
)

// NewProcessCmd creates the process command.
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <site-dir>",
		Short: "Rewrite the HTML pages of a generated site",
		Long: `Process walks a site output directory, parses each HTML page, and
rewrites the pages that contain the expected end-notes markup.

For every page the bibliography block is merged into the footnotes section.
Optional transforms harden external links and mark images for lazy loading,
and an optional audit inspects referenced images for EXIF metadata.

Pages are written back atomically; a page without the expected markup is
left byte-for-byte untouched. Content hashes of processed pages are stored
so subsequent runs can skip pages that did not change.

Examples:
  # Process a generated site in place
  endnotes process ./public

  # Preview without rewriting any file
  endnotes process --dry-run ./public

  # Enable the link and image transforms
  endnotes process --external-links --lazy-images --base-url https://example.org ./public

  # Audit referenced images for identifying metadata
  endnotes process --audit-images ./public

  # Write a Markdown report for CI
  endnotes process --markdown -o report.md ./public

Configuration file (.endnotes) example:
  defaults:
    baseUrl: https://example.org
  dirs:
    notes/:
      headingSuffix: "-bibliography"`,
		Args: cobra.ExactArgs(1),
		RunE: runProcessCmd,
	}

	addProcessFlags(cmd)

	return cmd
}

// addProcessFlags registers the flags shared by process and watch.
func addProcessFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of pages processed in parallel")
	cmd.Flags().BoolP("dry-run", "d", false,
		"Parse and transform but never write files back")
	cmd.Flags().StringP("base-url", "u", "",
		"Public base URL of the site, used to classify links as external")
	cmd.Flags().Bool("external-links", false,
		"Add target and rel attributes to off-site anchors")
	cmd.Flags().Bool("lazy-images", false,
		"Add loading=\"lazy\" to images")
	cmd.Flags().Bool("audit-images", false,
		"Inspect referenced images for identifying EXIF metadata")
	cmd.Flags().Bool("no-cache", false,
		"Process every page even if its content hash is unchanged")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .endnotes in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// runProcessCmd executes the process command.
func runProcessCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
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

	return runProcess(ctx, cfg, logger)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	if len(args) > 0 {
		siteDir, err := filepath.Abs(args[0])
		if err != nil {
			return nil, err
		}
		cfg.SiteDir = siteDir
	}

	var err error

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.DryRun, err = cmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, err
	}

	cfg.BaseURL, err = cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, err
	}

	cfg.ExternalLinks, err = cmd.Flags().GetBool("external-links")
	if err != nil {
		return nil, err
	}

	cfg.LazyImages, err = cmd.Flags().GetBool("lazy-images")
	if err != nil {
		return nil, err
	}

	cfg.AuditImages, err = cmd.Flags().GetBool("audit-images")
	if err != nil {
		return nil, err
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	cfg.SkipUnchanged = !noCache

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load selector rules from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty rules if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Rules, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Rules = &config.File{
			Dirs: make(map[string]config.RuleSet),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Always record runs using the XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// runProcess executes a full processing run over the site directory.
func runProcess(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting run",
		"siteDir", cfg.SiteDir,
		"concurrency", cfg.Concurrency,
		"dryRun", cfg.DryRun,
	)

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	siteReport, err := processSite(ctx, cfg, db, logger)
	if err != nil {
		return err
	}

	if err := outputReport(cfg, siteReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if db != nil {
		if _, err := db.SaveRun(ctx, siteReport); err != nil {
			logger.Error("failed to save run", "error", err)
		}
	}

	if failed := siteReport.PagesFailed(); failed > 0 {
		return fmt.Errorf("%d page(s) failed to process", failed)
	}
	return nil
}

// openDatabase opens the process database, degrading to no persistence
// when the database cannot be opened.
func openDatabase(cfg *config.Config, logger *slog.Logger) (*database.ProcessDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("cannot open database, change detection disabled", "dir", cfg.DBDir, "error", err)
		return nil, nil
	}
	logger.Debug("database opened", "dir", cfg.DBDir)
	return db, nil
}

// processSite discovers the site's HTML files and runs the pipeline over
// them, returning the aggregated report.
func processSite(ctx context.Context, cfg *config.Config, db *database.ProcessDB, logger *slog.Logger) (*model.SiteReport, error) {
	startTime := time.Now()

	defaults := effectiveRules(cfg, "")

	sc := scanner.New(cfg.SiteDir,
		scanner.WithIgnorePatterns(defaults.IgnorePatterns),
		scanner.WithLogger(logger),
	)
	paths, err := sc.HTMLFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan site directory: %w", err)
	}
	logger.Info("discovered pages", "count", len(paths))

	// Pages under a directory with rule overrides need their own transform
	// chain, so the batch runs once per rule group.
	pages := make([]*model.PageReport, 0, len(paths))
	for _, group := range groupByRules(cfg, paths) {
		bp := pipeline.NewBatchProcessor(
			pipelineFactory(cfg, group.rules, db, logger),
			pipeline.WithConcurrency(cfg.Concurrency),
			pipeline.WithBatchLogger(logger),
		)

		groupPages, err := bp.ProcessBatch(ctx, cfg.SiteDir, group.paths)
		if err != nil {
			return nil, err
		}
		pages = append(pages, groupPages...)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })

	siteReport := model.NewSiteReport(cfg.SiteDir)
	siteReport.DryRun = cfg.DryRun
	siteReport.Pages = pages
	siteReport.Duration = time.Since(startTime)

	return siteReport, nil
}

// ruleGroup is a set of pages sharing one effective rule set.
type ruleGroup struct {
	rules config.RuleSet
	paths []string
}

// groupByRules partitions page paths by the directory override that
// applies to them. Pages without an override share the defaults group.
func groupByRules(cfg *config.Config, paths []string) []ruleGroup {
	if cfg.Rules == nil || len(cfg.Rules.Dirs) == 0 {
		return []ruleGroup{{rules: effectiveRules(cfg, ""), paths: paths}}
	}

	byDir := make(map[string][]string)
	var dirs []string
	for _, p := range paths {
		dir := cfg.Rules.MatchDir(p)
		if _, seen := byDir[dir]; !seen {
			dirs = append(dirs, dir)
		}
		byDir[dir] = append(byDir[dir], p)
	}
	sort.Strings(dirs)

	groups := make([]ruleGroup, 0, len(dirs))
	for _, dir := range dirs {
		groupPaths := byDir[dir]
		groups = append(groups, ruleGroup{
			rules: effectiveRules(cfg, groupPaths[0]),
			paths: groupPaths,
		})
	}
	return groups
}

// effectiveRules resolves the rule set for a page path, falling back to
// the --base-url flag when the rules carry no base URL of their own.
func effectiveRules(cfg *config.Config, pagePath string) config.RuleSet {
	var rules config.RuleSet
	if cfg.Rules != nil {
		rules = cfg.Rules.GetRuleSet(pagePath)
	}
	if rules.BaseURL == "" {
		rules.BaseURL = cfg.BaseURL
	}
	return rules
}

// pipelineFactory builds the per-page pipeline constructor for a run.
func pipelineFactory(cfg *config.Config, rules config.RuleSet, db *database.ProcessDB, logger *slog.Logger) func() *pipeline.Pipeline {
	return func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddStep(pipeline.NewParseStep())

		if cfg.SkipUnchanged && db != nil {
			p.AddStep(pipeline.NewCacheStep(db.ForSite(cfg.SiteDir), logger))
		}

		p.AddStep(pipeline.NewTransformStep(buildTransforms(cfg, rules)...))

		if cfg.AuditImages {
			auditor := audit.NewImageAuditor(cfg.SiteDir, audit.WithLogger(logger))
			p.AddStep(pipeline.NewAuditStep(auditor))
		}

		p.AddStep(pipeline.NewWriteStep(cfg.DryRun))
		return p
	}
}

// buildTransforms assembles the transform chain from config and rules.
func buildTransforms(cfg *config.Config, rules config.RuleSet) []transform.Transform {
	var endnotesOpts []transform.EndnotesOption
	if rules.HeadingSuffix != "" {
		endnotesOpts = append(endnotesOpts, transform.WithHeadingSuffix(rules.HeadingSuffix))
	}
	if rules.ReferencesID != "" || rules.ReferencesClass != "" {
		endnotesOpts = append(endnotesOpts, transform.WithReferencesSelector(rules.ReferencesID, rules.ReferencesClass))
	}
	if rules.EndnotesRole != "" {
		endnotesOpts = append(endnotesOpts, transform.WithEndnotesRole(rules.EndnotesRole))
	}
	if rules.FootnotesID != "" {
		endnotesOpts = append(endnotesOpts, transform.WithFootnotesID(rules.FootnotesID))
	}
	if rules.WrapperID != "" {
		endnotesOpts = append(endnotesOpts, transform.WithWrapperID(rules.WrapperID))
	}

	transforms := []transform.Transform{transform.NewEndnotes(endnotesOpts...)}

	if cfg.ExternalLinks {
		transforms = append(transforms, transform.NewExternalLinks(rules.BaseURL))
	}
	if cfg.LazyImages {
		transforms = append(transforms, transform.NewLazyImages())
	}

	return transforms
}

// outputReport writes the run report to stdout or the configured file.
func outputReport(cfg *config.Config, siteReport *model.SiteReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(siteReport)
	return err
}
