package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner discovers the HTML pages of a site output directory.
//
// Design decision: We walk the generated output rather than the content
// sources because the transforms operate on rendered markup; the Markdown
// sources are owned by the generator and out of scope.
type Scanner struct {
	// root is the site output directory.
	root string

	// ignorePatterns are glob patterns (path.Match syntax, matched against
	// slash-separated paths relative to root) for pages to skip.
	ignorePatterns []string

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithIgnorePatterns sets glob patterns for pages to skip.
func WithIgnorePatterns(patterns []string) Option {
	return func(s *Scanner) {
		s.ignorePatterns = patterns
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// New creates a Scanner rooted at the given site output directory.
func New(root string, opts ...Option) *Scanner {
	s := &Scanner{
		root: root,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// HTMLFiles returns the relative paths of all HTML pages under the root,
// sorted for deterministic processing order. Hidden directories (leading
// dot) are skipped, as are pages matching an ignore pattern.
func (s *Scanner) HTMLFiles(ctx context.Context) ([]string, error) {
	pages := make([]string, 0)

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Bail out promptly when the run is cancelled.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if p != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !isHTML(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if s.ignored(rel) {
			s.logger.Debug("page ignored", "path", rel)
			return nil
		}

		pages = append(pages, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(pages)
	return pages, nil
}

// ignored reports whether the relative page path matches an ignore pattern.
// Patterns match either the full relative path or the base name, so both
// "drafts/*" and "404.html" work as expected.
func (s *Scanner) ignored(rel string) bool {
	for _, pattern := range s.ignorePatterns {
		if ok, err := path.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pattern, path.Base(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

// isHTML reports whether the file name has an HTML extension.
func isHTML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}
