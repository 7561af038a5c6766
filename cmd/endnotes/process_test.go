package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/philong6297/endnotes/internal/config"
)

// testLogger returns a logger that discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestNewProcessCmd tests the process command creation.
func TestNewProcessCmd(t *testing.T) {
	t.Parallel()

	cmd := NewProcessCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "process <site-dir>" {
			t.Errorf("expected use 'process <site-dir>', got %q", cmd.Use)
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"concurrency", "dry-run", "base-url", "external-links",
			"lazy-images", "audit-images", "no-cache", "config",
			"json", "markdown", "output",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})

	t.Run("concurrency default matches config", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("concurrency")
		if flag == nil {
			t.Fatal("expected concurrency flag")
		}
		if flag.DefValue != "8" {
			t.Errorf("expected default '8', got %q", flag.DefValue)
		}
	})
}

// TestBuildConfig tests building a Config from command flags.
func TestBuildConfig(t *testing.T) {
	t.Run("applies flags", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cmd := NewProcessCmd()
		if err := cmd.ParseFlags([]string{
			"--concurrency", "2",
			"--dry-run",
			"--base-url", "https://example.org",
			"--external-links",
			"--no-cache",
			"--markdown",
			"-o", "report.md",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"site"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Concurrency != 2 {
			t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
		}
		if !cfg.DryRun {
			t.Error("expected DryRun set")
		}
		if cfg.BaseURL != "https://example.org" {
			t.Errorf("BaseURL = %q, want https://example.org", cfg.BaseURL)
		}
		if !cfg.ExternalLinks {
			t.Error("expected ExternalLinks set")
		}
		if cfg.SkipUnchanged {
			t.Error("expected SkipUnchanged disabled by --no-cache")
		}
		if !cfg.MarkdownReport {
			t.Error("expected MarkdownReport set")
		}
		if cfg.ReportFile != "report.md" {
			t.Errorf("ReportFile = %q, want report.md", cfg.ReportFile)
		}
		if !filepath.IsAbs(cfg.SiteDir) {
			t.Errorf("SiteDir = %q, want absolute path", cfg.SiteDir)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cmd := NewProcessCmd()
		if err := cmd.ParseFlags([]string{"-c", "does-not-exist.yaml"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := buildConfig(cmd, []string{"site"}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("loads rules from config file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		configYAML := "defaults:\n  headingSuffix: \"-bibliography\"\ndirs:\n  notes/:\n    wrapperId: \"notes-refs\"\n"
		if err := os.WriteFile(filepath.Join(dir, ".endnotes"), []byte(configYAML), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewProcessCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"site"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Rules.Defaults.HeadingSuffix != "-bibliography" {
			t.Errorf("HeadingSuffix = %q, want -bibliography", cfg.Rules.Defaults.HeadingSuffix)
		}
		if cfg.Rules.Dirs["notes/"].WrapperID != "notes-refs" {
			t.Errorf("Dirs override not loaded: %+v", cfg.Rules.Dirs)
		}
	})
}

// TestGroupByRules tests partitioning of pages by rule overrides.
func TestGroupByRules(t *testing.T) {
	t.Parallel()

	t.Run("no overrides yields one group", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Rules = &config.File{Dirs: map[string]config.RuleSet{}}

		groups := groupByRules(cfg, []string{"a.html", "posts/b.html"})
		if len(groups) != 1 {
			t.Fatalf("len(groups) = %d, want 1", len(groups))
		}
		if len(groups[0].paths) != 2 {
			t.Errorf("group paths = %v, want both pages", groups[0].paths)
		}
	})

	t.Run("override directory gets its own group", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Rules = &config.File{
			Defaults: config.RuleSet{HeadingSuffix: "-references"},
			Dirs: map[string]config.RuleSet{
				"notes/": {HeadingSuffix: "-bibliography"},
			},
		}

		groups := groupByRules(cfg, []string{"a.html", "notes/b.html", "notes/c.html"})
		if len(groups) != 2 {
			t.Fatalf("len(groups) = %d, want 2", len(groups))
		}

		// Groups are ordered by directory prefix; defaults first.
		if groups[0].rules.HeadingSuffix != "-references" {
			t.Errorf("defaults group suffix = %q", groups[0].rules.HeadingSuffix)
		}
		if groups[1].rules.HeadingSuffix != "-bibliography" {
			t.Errorf("override group suffix = %q", groups[1].rules.HeadingSuffix)
		}
		if len(groups[1].paths) != 2 {
			t.Errorf("override group paths = %v, want two pages", groups[1].paths)
		}
	})
}

// TestEffectiveRules tests base URL fallback from the flag.
func TestEffectiveRules(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.BaseURL = "https://flag.example"
	cfg.Rules = &config.File{Dirs: map[string]config.RuleSet{}}

	if got := effectiveRules(cfg, "a.html").BaseURL; got != "https://flag.example" {
		t.Errorf("BaseURL = %q, want flag value", got)
	}

	cfg.Rules.Defaults.BaseURL = "https://rules.example"
	if got := effectiveRules(cfg, "a.html").BaseURL; got != "https://rules.example" {
		t.Errorf("BaseURL = %q, want rules value to win", got)
	}
}

// TestBuildTransforms tests assembly of the transform chain.
func TestBuildTransforms(t *testing.T) {
	t.Parallel()

	t.Run("endnotes only by default", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		transforms := buildTransforms(cfg, config.RuleSet{})
		if len(transforms) != 1 {
			t.Fatalf("len(transforms) = %d, want 1", len(transforms))
		}
		if transforms[0].Name() != "endnotes" {
			t.Errorf("transform = %q, want endnotes", transforms[0].Name())
		}
	})

	t.Run("optional transforms are appended", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.ExternalLinks = true
		cfg.LazyImages = true

		transforms := buildTransforms(cfg, config.RuleSet{BaseURL: "https://example.org"})
		if len(transforms) != 3 {
			t.Fatalf("len(transforms) = %d, want 3", len(transforms))
		}
	})
}

// TestProcessSite tests a full pass over a temporary site directory.
func TestProcessSite(t *testing.T) {
	t.Parallel()

	pageHTML := `<html><body><div id="content">
<h1 id="1-references">References</h1>
<div id="refs" class="references"><div>Doe 2020</div></div>
<div role="doc-endnotes"><hr><ol><li>a note</li></ol></div>
</div></body></html>`

	plainHTML := `<html><body><p>nothing to merge</p></body></html>`

	setupSite := func(t *testing.T) string {
		t.Helper()
		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "posts"), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "posts", "essay.html"), []byte(pageHTML), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "about.html"), []byte(plainHTML), 0o600); err != nil {
			t.Fatal(err)
		}
		return dir
	}

	t.Run("rewrites pages with end-notes markup", func(t *testing.T) {
		t.Parallel()

		dir := setupSite(t)
		cfg := config.NewConfig()
		cfg.SiteDir = dir
		cfg.SaveToDB = false

		siteReport, err := processSite(context.Background(), cfg, nil, testLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(siteReport.Pages) != 2 {
			t.Fatalf("len(Pages) = %d, want 2", len(siteReport.Pages))
		}
		if siteReport.PagesModified() != 1 {
			t.Errorf("PagesModified() = %d, want 1", siteReport.PagesModified())
		}

		rewritten, err := os.ReadFile(filepath.Join(dir, "posts", "essay.html"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(rewritten), `id="refs-container"`) {
			t.Errorf("expected combined wrapper in rewritten page, got:\n%s", rewritten)
		}

		untouched, err := os.ReadFile(filepath.Join(dir, "about.html"))
		if err != nil {
			t.Fatal(err)
		}
		if string(untouched) != plainHTML {
			t.Error("expected page without markup to stay byte-identical")
		}
	})

	t.Run("dry run leaves files untouched", func(t *testing.T) {
		t.Parallel()

		dir := setupSite(t)
		cfg := config.NewConfig()
		cfg.SiteDir = dir
		cfg.SaveToDB = false
		cfg.DryRun = true

		siteReport, err := processSite(context.Background(), cfg, nil, testLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if siteReport.PagesModified() != 1 {
			t.Errorf("PagesModified() = %d, want 1 (transform still runs)", siteReport.PagesModified())
		}

		content, err := os.ReadFile(filepath.Join(dir, "posts", "essay.html"))
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != pageHTML {
			t.Error("expected dry run to leave the page untouched")
		}
	})

	t.Run("directory override changes selector conventions", func(t *testing.T) {
		t.Parallel()

		dir := setupSite(t)
		cfg := config.NewConfig()
		cfg.SiteDir = dir
		cfg.SaveToDB = false
		cfg.Rules = &config.File{
			Dirs: map[string]config.RuleSet{
				"posts/": {WrapperID: "sources"},
			},
		}

		if _, err := processSite(context.Background(), cfg, nil, testLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rewritten, err := os.ReadFile(filepath.Join(dir, "posts", "essay.html"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(rewritten), `id="sources"`) {
			t.Errorf("expected override wrapper id, got:\n%s", rewritten)
		}
	})
}

// TestOutputReport tests report destination and format selection.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	t.Run("writes markdown report to file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfg := config.NewConfig()
		cfg.SiteDir = dir
		cfg.SaveToDB = false
		cfg.MarkdownReport = true
		cfg.ReportFile = filepath.Join(dir, "out", "report.md")

		siteReport, err := processSite(context.Background(), cfg, nil, testLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := outputReport(cfg, siteReport); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if !strings.Contains(string(content), "# Endnotes Report") {
			t.Error("expected markdown header in report file")
		}
	})

	t.Run("writes json report to file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfg := config.NewConfig()
		cfg.SiteDir = dir
		cfg.SaveToDB = false
		cfg.JSONReport = true
		cfg.ReportFile = filepath.Join(dir, "report.json")

		siteReport, err := processSite(context.Background(), cfg, nil, testLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := outputReport(cfg, siteReport); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if !strings.Contains(string(content), `"version"`) {
			t.Error("expected versioned JSON report")
		}
	})
}
