package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"golang.org/x/net/html"

	"github.com/philong6297/endnotes/internal/model"
)

// Page is the unit of work flowing through the pipeline: one HTML file of
// the site output directory, together with its parse tree and report.
type Page struct {
	// Root is the site output directory.
	Root string

	// RelPath is the page path relative to Root, slash-separated.
	RelPath string

	// AbsPath is the absolute file path of the page.
	AbsPath string

	// Doc is the parsed document. Populated by the parse step.
	Doc *html.Node

	// Report accumulates what happened to the page.
	Report *model.PageReport
}

// NewPage creates a Page for the given site root and relative path.
func NewPage(root, relPath string) *Page {
	return &Page{
		Root:    root,
		RelPath: relPath,
		AbsPath: filepath.Join(root, filepath.FromSlash(relPath)),
		Report:  model.NewPageReport(relPath),
	}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// page state from previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the page to modify.
	// Returns an error if the step fails critically; expected conditions
	// (missing elements, unchanged pages) are recorded on the page report
	// and return nil.
	Do(ctx context.Context, page *Page) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps over a single page.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, the default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence over the page.
// It respects context cancellation and logs each step's execution.
//
// A step marking the page as skipped (content unchanged since the last
// run) short-circuits the remaining steps: there is nothing left to do
// for that page.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps should handle their own cancellation points. This
// allows graceful cleanup between steps while still respecting cancellation.
func (p *Pipeline) Execute(ctx context.Context, page *Page) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"page", page.RelPath,
			)
			page.Report.SetError(ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"page", page.RelPath,
		)

		if err := step.Do(ctx, page); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"page", page.RelPath,
				"error", err,
			)
			page.Report.SetError(err)
			return err
		}

		if page.Report.Skipped {
			p.logger.Debug("page unchanged, remaining steps skipped",
				"page", page.RelPath,
			)
			return nil
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
