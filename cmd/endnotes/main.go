// Package main provides the entry point for the endnotes CLI.
//
// Endnotes is a post-processing tool for generated static sites. It merges
// rendered bibliography blocks into the footnotes section of each page,
// hardens external links, and audits referenced images for metadata that
// could identify the author.
//
// Usage:
//
//	endnotes process <site-dir>
//	endnotes watch <site-dir>
//
// See --help for all available options.
package main

// main is the entry point for endnotes.
func main() {
	Execute()
}
