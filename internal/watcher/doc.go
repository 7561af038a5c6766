// Package watcher monitors a site output directory for HTML changes.
//
// It wraps fsnotify with recursive directory registration and debounced
// change batching: generators rewrite many files within a short window, so
// the configured handler receives one sorted, deduplicated batch of
// root-relative paths per burst instead of one call per filesystem event.
package watcher
