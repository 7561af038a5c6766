package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/philong6297/endnotes/internal/database"
)

// TestNewHistoryCmd tests the history command's metadata and flags.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	if cmd.Use != "history" {
		t.Errorf("expected Use 'history', got %q", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("expected non-empty Short description")
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		t.Fatalf("limit flag not registered: %v", err)
	}
	if limit != 20 {
		t.Errorf("expected default limit 20, got %d", limit)
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		t.Fatalf("json flag not registered: %v", err)
	}
	if asJSON {
		t.Error("expected json flag to default to false")
	}
}

// TestPrintRunTable tests the aligned text rendering of run history.
func TestPrintRunTable(t *testing.T) {
	t.Parallel()

	runs := []database.RunSummary{
		{
			ID:            2,
			SiteDir:       "/srv/site/public",
			Timestamp:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			Duration:      1200 * time.Millisecond,
			PagesTotal:    12,
			PagesModified: 3,
			PagesSkipped:  9,
			Findings:      1,
		},
		{
			ID:         1,
			SiteDir:    "/srv/site/public",
			Timestamp:  time.Date(2026, 3, 13, 9, 30, 0, 0, time.UTC),
			Duration:   900 * time.Millisecond,
			PagesTotal: 12,
			DryRun:     true,
		},
	}

	cmd := NewHistoryCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	printRunTable(cmd, runs)
	got := buf.String()

	for _, want := range []string{
		"ID", "Date", "Modified", "Findings",
		"2026-03-14 09:30:00",
		"/srv/site/public",
		"1*",
		"* dry run",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}

	if strings.Contains(got, "2*") {
		t.Error("non-dry run must not be marked with an asterisk")
	}
}
