// Package database provides SQLite-based persistence for processing runs.
//
// Two tables back the tool: runs, one row per processing pass, feeding the
// history command; and pages, the latest recorded content hash per page,
// feeding change detection so unchanged generator output is skipped on
// subsequent runs.
//
// Design decision: We use modernc.org/sqlite (pure Go) rather than a CGO
// driver so the binary cross-compiles cleanly; the write volume here is
// far below anything that would make the driver choice matter.
package database
