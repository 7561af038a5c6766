package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/philong6297/endnotes/internal/model"
)

// ProcessDB provides SQLite-based storage for processing runs and per-page
// state. It manages connection pooling and provides methods for recording
// runs and answering change-detection queries.
//
// Design decision: We use a single database file for all sites rather than
// one per site output directory. Page paths are scoped by site directory,
// and a shared file keeps the history command trivial.
type ProcessDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ProcessDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// RunSummary is a row of the run history.
type RunSummary struct {
	// ID is the run's database id.
	ID int64

	// SiteDir is the processed site output directory.
	SiteDir string

	// Timestamp is when the run happened.
	Timestamp time.Time

	// Duration is how long the run took.
	Duration time.Duration

	// PagesTotal is the number of pages discovered.
	PagesTotal int

	// PagesModified is the number of pages rewritten.
	PagesModified int

	// PagesSkipped is the number of unchanged pages.
	PagesSkipped int

	// Findings is the number of audit findings.
	Findings int

	// DryRun is true if no files were written.
	DryRun bool
}

// Open opens or creates a ProcessDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*ProcessDB, error) {
	dbPath := filepath.Join(dbDir, "endnotes.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string
	// format. When CreateIfNotExists is false, mode=rw prevents creating
	// new files; mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections for writes,
	// but a single connection avoids lock contention entirely.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pdb := &ProcessDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := pdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pdb, nil
}

// Close closes the database connection.
func (pdb *ProcessDB) Close() error {
	return pdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (pdb *ProcessDB) createTables() error {
	schema := `
	-- Runs store one row per processing pass over a site directory
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site_dir TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		duration_ms INTEGER,
		pages_total INTEGER,
		pages_modified INTEGER,
		pages_skipped INTEGER,
		findings INTEGER,
		dry_run INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_site ON runs(site_dir);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Pages store the latest processed state per page path for
	-- change detection between runs
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site_dir TEXT NOT NULL,
		path TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		modified INTEGER DEFAULT 0,
		transforms TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		run_id INTEGER,
		UNIQUE(site_dir, path)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_path ON pages(path);
	`

	_, err := pdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun records a completed run and upserts the per-page state.
// Dry runs are recorded in the run history but never update page state:
// the files on disk were not changed, so change detection must still fire
// on the next real run.
func (pdb *ProcessDB) SaveRun(ctx context.Context, report *model.SiteReport) (int64, error) {
	result, err := pdb.db.ExecContext(ctx,
		`INSERT INTO runs (site_dir, timestamp, duration_ms, pages_total, pages_modified, pages_skipped, findings, dry_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.SiteDir,
		report.DateProcessed.UTC().Format(time.RFC3339),
		report.Duration.Milliseconds(),
		len(report.Pages),
		report.PagesModified(),
		report.PagesSkipped(),
		report.TotalFindings(),
		boolToInt(report.DryRun),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	if report.DryRun {
		return runID, nil
	}

	for _, page := range report.Pages {
		if page == nil || page.Error != nil || page.Skipped {
			// Failed pages get retried next run; skipped pages already
			// have a current row.
			continue
		}

		transforms, err := json.Marshal(page.AppliedTransforms)
		if err != nil {
			return runID, fmt.Errorf("failed to marshal transforms: %w", err)
		}

		_, err = pdb.db.ExecContext(ctx,
			`INSERT INTO pages (site_dir, path, content_hash, modified, transforms, timestamp, run_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(site_dir, path) DO UPDATE SET
			   content_hash = excluded.content_hash,
			   modified = excluded.modified,
			   transforms = excluded.transforms,
			   timestamp = excluded.timestamp,
			   run_id = excluded.run_id`,
			report.SiteDir,
			page.Path,
			page.ContentHash,
			boolToInt(page.Modified),
			string(transforms),
			page.DateProcessed.UTC().Format(time.RFC3339),
			runID,
		)
		if err != nil {
			return runID, fmt.Errorf("failed to upsert page %s: %w", page.Path, err)
		}
	}

	return runID, nil
}

// HasUnchangedForSite reports whether the page at path was previously
// recorded with the same content hash for the given site directory.
func (pdb *ProcessDB) HasUnchangedForSite(ctx context.Context, siteDir, path, hash string) (bool, error) {
	var count int
	err := pdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pages WHERE site_dir = ? AND path = ? AND content_hash = ?`,
		siteDir, path, hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query page hash: %w", err)
	}
	return count > 0, nil
}

// SiteStore scopes change detection to one site directory so the pipeline's
// cache step doesn't need to carry the directory around.
type SiteStore struct {
	pdb     *ProcessDB
	siteDir string
}

// ForSite returns a SiteStore answering queries for the given site directory.
func (pdb *ProcessDB) ForSite(siteDir string) *SiteStore {
	return &SiteStore{pdb: pdb, siteDir: siteDir}
}

// HasUnchanged implements the pipeline's hash store.
func (s *SiteStore) HasUnchanged(ctx context.Context, path, hash string) (bool, error) {
	return s.pdb.HasUnchangedForSite(ctx, s.siteDir, path, hash)
}

// ListRuns returns the run history, newest first, limited to the given
// number of rows. A non-positive limit returns everything.
func (pdb *ProcessDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, site_dir, timestamp, duration_ms, pages_total, pages_modified, pages_skipped, findings, dry_run
	          FROM runs ORDER BY id DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := pdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var (
			run        RunSummary
			ts         string
			durationMS int64
			dryRun     int
		)
		if err := rows.Scan(&run.ID, &run.SiteDir, &ts, &durationMS,
			&run.PagesTotal, &run.PagesModified, &run.PagesSkipped, &run.Findings, &dryRun); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = parseTimestamp(ts)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.DryRun = dryRun != 0
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// parseTimestamp parses the timestamp formats SQLite hands back.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// boolToInt converts a bool to the 0/1 SQLite convention.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
