package pipeline

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/renameio/v2"
	"golang.org/x/crypto/sha3"

	"github.com/philong6297/endnotes/internal/audit"
	"github.com/philong6297/endnotes/internal/dom"
	"github.com/philong6297/endnotes/internal/transform"
)

// HashStore answers whether a page is unchanged since the previous run.
// Implemented by the processing database; kept as an interface here so the
// cache step can be tested without SQLite.
type HashStore interface {
	// HasUnchanged reports whether the page at path was previously recorded
	// with the same content hash.
	HasUnchanged(ctx context.Context, path, hash string) (bool, error)
}

// ParseStep reads the page file, records its content hash, and parses the
// HTML into a document tree for the following steps.
type ParseStep struct{}

// NewParseStep creates the parse step.
func NewParseStep() *ParseStep {
	return &ParseStep{}
}

// Name returns the step name.
func (s *ParseStep) Name() string {
	return "parse"
}

// Do reads and parses the page.
func (s *ParseStep) Do(_ context.Context, page *Page) error {
	raw, err := os.ReadFile(page.AbsPath) //nolint:gosec // Path comes from walking the site root
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	// SHA3-256 of the pre-transform content identifies the generator output
	// version independent of our own rewrites.
	sum := sha3.Sum256(raw)
	page.Report.ContentHash = hex.EncodeToString(sum[:])

	doc, err := dom.Parse(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}
	page.Doc = doc

	return nil
}

// CacheStep marks pages whose content hash matches the previous run as
// skipped, short-circuiting the rest of the pipeline for them.
type CacheStep struct {
	// store is the hash lookup backend.
	store HashStore

	// logger for structured logging.
	logger *slog.Logger
}

// NewCacheStep creates the cache step backed by the given store.
func NewCacheStep(store HashStore, logger *slog.Logger) *CacheStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *CacheStep) Name() string {
	return "cache"
}

// Do checks the page hash against the store.
// Store errors degrade to a cache miss: reprocessing an unchanged page is
// harmless, failing the page over a cache lookup is not.
func (s *CacheStep) Do(ctx context.Context, page *Page) error {
	if s.store == nil {
		return nil
	}

	unchanged, err := s.store.HasUnchanged(ctx, page.RelPath, page.Report.ContentHash)
	if err != nil {
		s.logger.Debug("cache lookup failed, treating as changed",
			"page", page.RelPath,
			"error", err,
		)
		return nil
	}
	if unchanged {
		page.Report.Skipped = true
	}
	return nil
}

// TransformStep applies the configured DOM transforms to the page in order.
type TransformStep struct {
	// transforms are applied in order.
	transforms []transform.Transform
}

// NewTransformStep creates the transform step.
func NewTransformStep(transforms ...transform.Transform) *TransformStep {
	return &TransformStep{transforms: transforms}
}

// Name returns the step name.
func (s *TransformStep) Name() string {
	return "transform"
}

// Do applies every transform to the parsed document.
func (s *TransformStep) Do(_ context.Context, page *Page) error {
	for _, tr := range s.transforms {
		if err := tr.Apply(page.Doc, page.Report); err != nil {
			return fmt.Errorf("transform %s: %w", tr.Name(), err)
		}
	}
	return nil
}

// AuditStep runs the image metadata audit over the parsed page.
type AuditStep struct {
	// auditor inspects referenced images.
	auditor *audit.ImageAuditor
}

// NewAuditStep creates the audit step.
func NewAuditStep(auditor *audit.ImageAuditor) *AuditStep {
	return &AuditStep{auditor: auditor}
}

// Name returns the step name.
func (s *AuditStep) Name() string {
	return "audit"
}

// Do audits the page's referenced images.
func (s *AuditStep) Do(ctx context.Context, page *Page) error {
	if s.auditor == nil {
		return nil
	}
	return s.auditor.AuditPage(ctx, page.Doc, page.Report)
}

// WriteStep serializes the transformed document back to the page file.
// Unmodified pages and dry runs leave the file untouched.
type WriteStep struct {
	// dryRun disables all file writes.
	dryRun bool
}

// NewWriteStep creates the write step.
func NewWriteStep(dryRun bool) *WriteStep {
	return &WriteStep{dryRun: dryRun}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do atomically replaces the page file with the serialized document.
// renameio gives us temp file creation, fsync, atomic rename, and cleanup
// on error, so a crash mid-write can never leave a half-written page in
// the publish directory.
func (s *WriteStep) Do(_ context.Context, page *Page) error {
	if !page.Report.Modified || s.dryRun {
		return nil
	}

	pending, err := renameio.NewPendingFile(page.AbsPath)
	if err != nil {
		return fmt.Errorf("create pending page file: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck // Cleanup after commit is a no-op

	if err := dom.Render(pending, page.Doc); err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace page file: %w", err)
	}

	return nil
}
