package log

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// PathHandler wraps an slog.Handler to rewrite filesystem paths in log
// attributes. Absolute paths under the configured root are rewritten to
// root-relative form, and paths under the user's home directory are
// abbreviated with "~".
//
// Design decision: We use a handler wrapper rather than rewriting paths at
// each call site because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay simple and cannot forget to rewrite
//
// Keeping machine-specific prefixes out of the output makes logs identical
// across machines and CI runners, which in turn keeps build logs diffable
// and avoids leaking the local directory layout into shared artifacts.
type PathHandler struct {
	// handler is the underlying slog handler that receives rewritten records.
	handler slog.Handler

	// root is the site directory prefix stripped from path values.
	// Empty means only home directory abbreviation is applied.
	root string

	// home is the user's home directory, abbreviated to "~" in values.
	home string
}

// NewPathHandler creates a PathHandler wrapping the given handler.
// Paths under root are rewritten relative to it. If handler is nil, the
// returned PathHandler uses slog.Default().Handler().
func NewPathHandler(handler slog.Handler, root string) *PathHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	return &PathHandler{
		handler: handler,
		root:    filepath.Clean(root),
		home:    home,
	}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *PathHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it to the underlying handler.
func (h *PathHandler) Handle(ctx context.Context, r slog.Record) error {
	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})

	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are rewritten before being added.
func (h *PathHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewriteAttr(a)
	}
	return &PathHandler{handler: h.handler.WithAttrs(rewritten), root: h.root, home: h.home}
}

// WithGroup returns a new handler with the given group name.
func (h *PathHandler) WithGroup(name string) slog.Handler {
	return &PathHandler{handler: h.handler.WithGroup(name), root: h.root, home: h.home}
}

// rewriteAttr rewrites a single attribute, recursively handling groups.
func (h *PathHandler) rewriteAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			rewritten[i] = h.rewriteAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	return slog.String(a.Key, h.rewritePath(a.Value.String()))
}

// rewritePath rewrites a single string value if it is a path under the
// configured root or the home directory. Other values pass through unchanged.
func (h *PathHandler) rewritePath(v string) string {
	if !filepath.IsAbs(v) {
		return v
	}

	if h.root != "" && h.root != "." {
		if rel, ok := strings.CutPrefix(v, h.root+string(filepath.Separator)); ok {
			return filepath.ToSlash(rel)
		}
		if v == h.root {
			return "."
		}
	}

	if h.home != "" {
		if rel, ok := strings.CutPrefix(v, h.home+string(filepath.Separator)); ok {
			return "~/" + filepath.ToSlash(rel)
		}
		if v == h.home {
			return "~"
		}
	}

	return v
}
