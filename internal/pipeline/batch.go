package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/philong6297/endnotes/internal/model"
)

// BatchProcessor handles concurrent processing of multiple pages.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-page execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each page.
	// We use a factory to ensure each page gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrently processed pages.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed page reports.
	// Access is synchronized via mutex.
	results []*model.PageReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrently processed pages.
// Default is 8 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each page to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// pages and allows for per-page customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     8,
		results:         make([]*model.PageReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch processes multiple pages concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each page gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports in the order of the input paths, even for pages
// that failed. The error return indicates if the batch was cancelled;
// per-page errors are recorded in the reports.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, root string, paths []string) ([]*model.PageReport, error) {
	bp.logger.Info("starting batch processing",
		"total_pages", len(paths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.PageReport, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, relPath := range paths {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			page := NewPage(root, relPath)
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, page)

			// Store result regardless of error
			// The report contains error information if processing failed
			bp.mu.Lock()
			bp.results[i] = page.Report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("page processing failed",
					"page", relPath,
					"error", err,
				)
				// Don't return the error to errgroup - we want the other
				// pages to finish. The error is recorded in the report.
				return nil
			}

			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_pages", len(paths),
		"elapsed", elapsed,
	)

	return bp.results, err
}
