// Package log provides logging utilities built on log/slog.
//
// The main component is PathHandler, an slog.Handler wrapper that rewrites
// absolute filesystem paths in log attributes to site-relative or
// home-relative form. This keeps log output identical across machines and
// CI runners and avoids leaking the local directory layout into shared
// build artifacts.
//
// NewLogger bundles the common setup: a text handler on the given writer,
// quiet by default, debug level when verbose, wrapped in a PathHandler.
package log
