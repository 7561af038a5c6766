package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// newCaptureLogger returns a logger writing through a PathHandler into buf.
func newCaptureLogger(buf *bytes.Buffer, root string) *slog.Logger {
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewPathHandler(handler, root))
}

// TestPathHandlerRewritesRootPaths tests root-relative path rewriting.
func TestPathHandlerRewritesRootPaths(t *testing.T) {
	t.Parallel()

	t.Run("path under root becomes relative", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newCaptureLogger(&buf, "/srv/site/public")

		logger.Info("processing", "path", "/srv/site/public/posts/hello.html")

		output := buf.String()
		if !strings.Contains(output, "path=posts/hello.html") {
			t.Errorf("expected relative path in output, got: %s", output)
		}
		if strings.Contains(output, "/srv/site/public") {
			t.Errorf("expected root prefix stripped, got: %s", output)
		}
	})

	t.Run("root itself becomes dot", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newCaptureLogger(&buf, "/srv/site/public")

		logger.Info("scanning", "dir", "/srv/site/public")

		if !strings.Contains(buf.String(), "dir=.") {
			t.Errorf("expected root rewritten to dot, got: %s", buf.String())
		}
	})

	t.Run("unrelated absolute path passes through", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newCaptureLogger(&buf, "/srv/site/public")

		logger.Info("reading", "path", "/etc/hosts")

		if !strings.Contains(buf.String(), "path=/etc/hosts") {
			t.Errorf("expected unrelated path unchanged, got: %s", buf.String())
		}
	})

	t.Run("relative value passes through", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newCaptureLogger(&buf, "/srv/site/public")

		logger.Info("processing", "page", "posts/hello.html")

		if !strings.Contains(buf.String(), "page=posts/hello.html") {
			t.Errorf("expected relative value unchanged, got: %s", buf.String())
		}
	})

	t.Run("non-string values pass through", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := newCaptureLogger(&buf, "/srv/site/public")

		logger.Info("done", "pages", 42)

		if !strings.Contains(buf.String(), "pages=42") {
			t.Errorf("expected integer attribute unchanged, got: %s", buf.String())
		}
	})
}

// TestPathHandlerGroups tests rewriting inside attribute groups.
func TestPathHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newCaptureLogger(&buf, "/srv/site/public")

	logger.Info("write failed",
		slog.Group("file",
			slog.String("path", "/srv/site/public/about.html"),
			slog.Int("size", 2048),
		),
	)

	output := buf.String()
	if !strings.Contains(output, "file.path=about.html") {
		t.Errorf("expected group member rewritten, got: %s", output)
	}
	if !strings.Contains(output, "file.size=2048") {
		t.Errorf("expected non-string group member unchanged, got: %s", output)
	}
}

// TestPathHandlerWithAttrs tests that pre-bound attributes are rewritten.
func TestPathHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newCaptureLogger(&buf, "/srv/site/public")

	bound := logger.With("site", "/srv/site/public/blog")
	bound.Info("starting")

	if !strings.Contains(buf.String(), "site=blog") {
		t.Errorf("expected bound attribute rewritten, got: %s", buf.String())
	}
}

// TestPathHandlerEnabled tests level delegation to the wrapped handler.
func TestPathHandlerEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	ph := NewPathHandler(handler, "/srv/site/public")

	if ph.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug disabled for warn-level handler")
	}
	if !ph.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error enabled for warn-level handler")
	}
}

// TestNewLogger tests the logger constructor's verbosity switch.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("quiet by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, "/srv/site/public", false)

		logger.Info("should be suppressed")
		logger.Warn("should appear")

		output := buf.String()
		if strings.Contains(output, "should be suppressed") {
			t.Error("expected info suppressed in quiet mode")
		}
		if !strings.Contains(output, "should appear") {
			t.Error("expected warning in quiet mode")
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, "/srv/site/public", true)

		logger.Debug("detail")

		if !strings.Contains(buf.String(), "detail") {
			t.Error("expected debug output in verbose mode")
		}
	})
}
