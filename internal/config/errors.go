package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSiteDir is returned when no site output directory is specified.
	ErrNoSiteDir = errors.New("no site directory specified: provide the generated output directory as an argument")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	// Zero concurrent workers would mean no pages get processed.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidDebounce is returned when the watch debounce is negative.
	// Use 0 to process every file event immediately.
	ErrInvalidDebounce = errors.New("invalid debounce: must be non-negative")
)
