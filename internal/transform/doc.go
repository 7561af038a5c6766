// Package transform implements the DOM rewrites applied to generated HTML
// pages before publishing.
//
// The central transform is Endnotes, which relocates the bibliography block
// produced by the citation toolchain so that it forms a single combined
// end-notes section with the footnotes at the bottom of the article.
// ExternalLinks and LazyImages are optional companion transforms.
//
// All transforms share one error policy: a page that lacks the expected
// elements is an expected condition, not a failure. Selector misses are
// silent no-ops and never surface to the user or the logs.
package transform
