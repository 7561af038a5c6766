package model

import "time"

// PageReport records the outcome of post-processing a single HTML page.
// It accumulates the transforms that changed the page and any privacy
// findings discovered while auditing referenced assets.
//
// Design decision: We use a single struct per page rather than separate
// result types per pipeline step because:
// 1. It simplifies serialization and database storage
// 2. Steps can build on earlier results without extra plumbing
// 3. The report writers get one coherent view of each page
type PageReport struct {
	// Path is the page path relative to the site output directory.
	Path string `json:"path"`

	// DateProcessed is when the page was processed.
	DateProcessed time.Time `json:"date_processed"`

	// ContentHash is the SHA3-256 hex digest of the page content before
	// processing. Used to skip pages unchanged since the previous run.
	ContentHash string `json:"content_hash,omitempty"`

	// Modified is true if at least one transform rewrote the page.
	Modified bool `json:"modified"`

	// Skipped is true if the page was left untouched because its content
	// hash matched the previous run.
	Skipped bool `json:"skipped"`

	// AppliedTransforms lists the names of transforms that changed the page,
	// in execution order.
	AppliedTransforms []string `json:"applied_transforms,omitempty"`

	// Findings contains privacy findings from asset audits.
	Findings []Finding `json:"findings,omitempty"`

	// Error is the error that aborted processing, if any.
	// Not serialized; ErrorMessage carries the text instead.
	Error error `json:"-"`

	// ErrorMessage is the human-readable form of Error.
	ErrorMessage string `json:"error_message,omitempty"`
}

// Finding represents a single privacy finding attached to a page.
type Finding struct {
	// Type is the finding type identifier (see severity.go).
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains why this finding matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the specific value found (EXIF tag, attribute, etc.).
	Value string `json:"value,omitempty"`

	// Location is where the finding was discovered (page -> asset).
	Location string `json:"location,omitempty"`
}

// NewPageReport creates a PageReport for the given relative page path.
func NewPageReport(path string) *PageReport {
	return &PageReport{
		Path:              path,
		DateProcessed:     time.Now(),
		AppliedTransforms: make([]string, 0),
		Findings:          make([]Finding, 0),
	}
}

// AddTransform records that the named transform changed the page.
func (r *PageReport) AddTransform(name string) {
	r.AppliedTransforms = append(r.AppliedTransforms, name)
	r.Modified = true
}

// AddFinding appends a finding, filling in severity metadata from the
// central mapping when the caller left it empty.
func (r *PageReport) AddFinding(f Finding) {
	if f.SeverityText == "" {
		f.SeverityText = f.Severity.String()
	}
	if f.Impact == "" || f.Recommendation == "" {
		info := LookupFindingInfo(f.Type)
		if f.Impact == "" {
			f.Impact = info.Impact
		}
		if f.Recommendation == "" {
			f.Recommendation = info.Recommendation
		}
	}
	r.Findings = append(r.Findings, f)
}

// SetError records a processing error on the report.
func (r *PageReport) SetError(err error) {
	if err == nil {
		return
	}
	r.Error = err
	r.ErrorMessage = err.Error()
}
