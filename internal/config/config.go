package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Selector defaults mirror the markup the Markdown/R-Markdown citation
// toolchain emits; the rest are chosen for a typical static blog output
// directory of a few hundred pages.
const (
	// DefaultConcurrency of 8 concurrent pages balances throughput with
	// file-handle usage. Processing is I/O bound on page reads and writes,
	// so a moderate fan-out is enough to saturate most disks.
	DefaultConcurrency = 8

	// DefaultDebounce is the delay used to coalesce rapid file events in
	// watch mode. Site generators write many files in a burst; 300ms groups
	// a full rebuild into a single processing pass.
	DefaultDebounce = 300 * time.Millisecond

	// AppName is the application name used for XDG directory paths.
	AppName = "endnotes"
)

// Config holds all configuration options for a processing run.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// SiteDir is the site output directory containing the generated HTML.
	SiteDir string

	// BaseURL is the public URL the site is served at. Used to classify
	// anchors as internal or external. Optional; when empty every absolute
	// link counts as external.
	BaseURL string

	// Concurrency is the number of pages processed in parallel.
	Concurrency int

	// DryRun parses and transforms pages but never writes files back.
	DryRun bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ExternalLinks enables the off-site anchor hardening transform.
	ExternalLinks bool

	// LazyImages enables the image lazy-loading transform.
	LazyImages bool

	// AuditImages enables the EXIF metadata audit of referenced images.
	AuditImages bool

	// SkipUnchanged skips pages whose content hash matches the previous
	// run recorded in the database.
	SkipUnchanged bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable
	// format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .endnotes in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Rules holds selector overrides loaded from the config file.
	// This is populated by LoadConfigFile and used when building transforms.
	Rules *File

	// DBDir is the directory path for storing the SQLite database.
	// When set, run results are saved for change detection and history.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to record runs in the database.
	SaveToDB bool

	// Debounce is the coalescing delay for watch mode.
	Debounce time.Duration
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (concurrency,
// debounce). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Concurrency:   DefaultConcurrency,
		Debounce:      DefaultDebounce,
		SkipUnchanged: true,
	}
}

// XDGDataDir returns the XDG data directory for the tool.
// On Linux: ~/.local/share/endnotes
// On macOS: ~/Library/Application Support/endnotes
// On Windows: %LOCALAPPDATA%\endnotes
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the tool.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any processing begins.
//
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.SiteDir == "" {
		return ErrNoSiteDir
	}

	// Concurrency must be positive; zero would mean no processing
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// Debounce must be non-negative
	if c.Debounce < 0 {
		return ErrInvalidDebounce
	}

	return nil
}
