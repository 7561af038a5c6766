// Package scanner discovers the HTML pages of a generated site output
// directory.
//
// Discovery is deliberately simple: a recursive walk collecting *.html and
// *.htm files, skipping hidden directories and user-configured ignore
// patterns, returning paths relative to the site root in sorted order so
// every run processes pages deterministically.
package scanner
