package model

import "time"

// SiteReport aggregates the page reports from a single processing run
// over a site output directory.
type SiteReport struct {
	// SiteDir is the site output directory that was processed.
	SiteDir string `json:"site_dir"`

	// DateProcessed is when the run started.
	DateProcessed time.Time `json:"date_processed"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`

	// DryRun is true if no files were rewritten.
	DryRun bool `json:"dry_run"`

	// Pages contains the per-page reports in discovery order.
	Pages []*PageReport `json:"pages"`
}

// NewSiteReport creates a SiteReport for the given site directory.
func NewSiteReport(siteDir string) *SiteReport {
	return &SiteReport{
		SiteDir:       siteDir,
		DateProcessed: time.Now(),
		Pages:         make([]*PageReport, 0),
	}
}

// PagesProcessed returns the number of pages that were actually processed
// (not skipped by the content-hash cache).
func (r *SiteReport) PagesProcessed() int {
	count := 0
	for _, p := range r.Pages {
		if p != nil && !p.Skipped {
			count++
		}
	}
	return count
}

// PagesModified returns the number of pages rewritten by at least one transform.
func (r *SiteReport) PagesModified() int {
	count := 0
	for _, p := range r.Pages {
		if p != nil && p.Modified {
			count++
		}
	}
	return count
}

// PagesSkipped returns the number of pages skipped as unchanged.
func (r *SiteReport) PagesSkipped() int {
	count := 0
	for _, p := range r.Pages {
		if p != nil && p.Skipped {
			count++
		}
	}
	return count
}

// PagesFailed returns the number of pages whose processing failed.
func (r *SiteReport) PagesFailed() int {
	count := 0
	for _, p := range r.Pages {
		if p != nil && p.Error != nil {
			count++
		}
	}
	return count
}

// Findings returns all findings across pages, in page order.
func (r *SiteReport) Findings() []Finding {
	findings := make([]Finding, 0)
	for _, p := range r.Pages {
		if p == nil {
			continue
		}
		findings = append(findings, p.Findings...)
	}
	return findings
}

// FindingsBySeverity returns all findings at the given severity, in page order.
func (r *SiteReport) FindingsBySeverity(s Severity) []Finding {
	findings := make([]Finding, 0)
	for _, f := range r.Findings() {
		if f.Severity == s {
			findings = append(findings, f)
		}
	}
	return findings
}

// CountBySeverity returns the number of findings at the given severity.
func (r *SiteReport) CountBySeverity(s Severity) int {
	count := 0
	for _, f := range r.Findings() {
		if f.Severity == s {
			count++
		}
	}
	return count
}

// TotalFindings returns the total number of findings across all pages.
func (r *SiteReport) TotalFindings() int {
	return len(r.Findings())
}

// HasFindings reports whether any page produced a finding.
func (r *SiteReport) HasFindings() bool {
	for _, p := range r.Pages {
		if p != nil && len(p.Findings) > 0 {
			return true
		}
	}
	return false
}
