package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, cfg.Concurrency)
	}
	if cfg.Debounce != DefaultDebounce {
		t.Errorf("expected debounce %v, got %v", DefaultDebounce, cfg.Debounce)
	}
	if !cfg.SkipUnchanged {
		t.Error("expected SkipUnchanged to default to true")
	}
	if cfg.DryRun {
		t.Error("expected DryRun to default to false")
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.SiteDir = "public"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config passes",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "missing site dir",
			mutate:  func(c *Config) { c.SiteDir = "" },
			wantErr: ErrNoSiteDir,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Concurrency = -1 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Debounce = -time.Second },
			wantErr: ErrInvalidDebounce,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile tests YAML config file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads defaults and directory overrides", func(t *testing.T) {
		t.Parallel()

		content := `defaults:
  headingSuffix: "-references"
  baseUrl: "https://example.com"
dirs:
  posts/:
    referencesId: "bibliography"
    ignorePatterns:
      - "drafts/*"
`
		path := filepath.Join(t.TempDir(), ".endnotes")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if cf.Defaults.HeadingSuffix != "-references" {
			t.Errorf("unexpected heading suffix %q", cf.Defaults.HeadingSuffix)
		}
		if cf.Defaults.BaseURL != "https://example.com" {
			t.Errorf("unexpected base URL %q", cf.Defaults.BaseURL)
		}
		if len(cf.Dirs) != 1 {
			t.Fatalf("expected 1 directory override, got %d", len(cf.Dirs))
		}
		if cf.Dirs["posts/"].ReferencesID != "bibliography" {
			t.Errorf("unexpected references id %q", cf.Dirs["posts/"].ReferencesID)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".endnotes")
		if err := os.WriteFile(path, []byte("defaults: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestGetRuleSet tests rule merging.
func TestGetRuleSet(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: RuleSet{
			HeadingSuffix: "-references",
			ReferencesID:  "refs",
		},
		Dirs: map[string]RuleSet{
			"posts/": {
				ReferencesID: "bibliography",
			},
			"posts/cpp/": {
				HeadingSuffix: "-bib",
			},
		},
	}

	t.Run("page outside overrides gets defaults", func(t *testing.T) {
		t.Parallel()

		rs := cf.GetRuleSet("about/index.html")
		if rs.ReferencesID != "refs" {
			t.Errorf("expected defaults, got %q", rs.ReferencesID)
		}
	})

	t.Run("override merges onto defaults", func(t *testing.T) {
		t.Parallel()

		rs := cf.GetRuleSet("posts/hello/index.html")
		if rs.ReferencesID != "bibliography" {
			t.Errorf("expected overridden references id, got %q", rs.ReferencesID)
		}
		if rs.HeadingSuffix != "-references" {
			t.Errorf("expected inherited heading suffix, got %q", rs.HeadingSuffix)
		}
	})

	t.Run("longest prefix wins", func(t *testing.T) {
		t.Parallel()

		rs := cf.GetRuleSet("posts/cpp/fast/index.html")
		if rs.HeadingSuffix != "-bib" {
			t.Errorf("expected most specific override, got %q", rs.HeadingSuffix)
		}
	})

	t.Run("prefix must match on a directory boundary", func(t *testing.T) {
		t.Parallel()

		rs := cf.GetRuleSet("postscript.html")
		if rs.ReferencesID != "refs" {
			t.Errorf("expected defaults for non-directory match, got %q", rs.ReferencesID)
		}
	})
}

// TestMatchDir tests directory prefix selection for rule overrides.
func TestMatchDir(t *testing.T) {
	t.Parallel()

	cf := &File{
		Dirs: map[string]RuleSet{
			"posts/":     {ReferencesID: "bibliography"},
			"posts/cpp/": {HeadingSuffix: "-bib"},
		},
	}

	tests := []struct {
		name     string
		pagePath string
		want     string
	}{
		{name: "no override", pagePath: "about/index.html", want: ""},
		{name: "single prefix", pagePath: "posts/hello/index.html", want: "posts/"},
		{name: "longest prefix wins", pagePath: "posts/cpp/fast/index.html", want: "posts/cpp/"},
		{name: "directory boundary required", pagePath: "postscript.html", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := cf.MatchDir(tt.pagePath); got != tt.want {
				t.Errorf("MatchDir(%q) = %q, want %q", tt.pagePath, got, tt.want)
			}
		})
	}
}

// TestFindConfigFile tests the config file search order.
func TestFindConfigFile(t *testing.T) {
	// Not parallel: changes working directory.

	t.Run("explicit path is used when it exists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("missing explicit path returns empty", func(t *testing.T) {
		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("finds config in current directory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		t.Chdir(dir)

		got := FindConfigFile("")
		// Resolve symlinks: macOS TempDir lives under /var -> /private/var.
		wantResolved, _ := filepath.EvalSymlinks(path)
		gotResolved, _ := filepath.EvalSymlinks(got)
		if gotResolved != wantResolved {
			t.Errorf("expected %q, got %q", wantResolved, gotResolved)
		}
	})
}
