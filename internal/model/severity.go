package model

// Severity represents the risk level of an audit finding.
// This allows categorizing findings by their potential impact on the
// author's privacy when a page is published.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct privacy impact.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: software names or timestamps embedded in image metadata.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: camera make/model or host computer names in image metadata.
	SeverityMedium

	// SeverityHigh indicates serious issues that risk identifying the author.
	// Examples: device serial numbers, author or copyright fields.
	SeverityHigh

	// SeverityCritical indicates severe issues that likely expose the author.
	// Examples: GPS coordinates embedded in published images.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping ensures consistent risk assessment across the application.
//
// Design decision: We use a map rather than embedding severity in each finding
// type because:
// 1. It allows updating risk assessments without modifying type definitions
// 2. It provides a single source of truth for risk levels
// 3. It makes it easy to generate severity documentation
var findingInfoMapping = map[string]FindingInfo{
	"exif_gps": {
		Severity:       SeverityCritical,
		Impact:         "A published image contains GPS coordinates revealing where the photo was taken.",
		Recommendation: "Strip EXIF metadata from the image before publishing (e.g. exiftool -all=).",
	},
	"exif_serial": {
		Severity:       SeverityHigh,
		Impact:         "A published image contains a device serial number that uniquely identifies the camera.",
		Recommendation: "Strip EXIF metadata from the image before publishing.",
	},
	"exif_author": {
		Severity:       SeverityHigh,
		Impact:         "A published image contains author or copyright fields that may identify the creator.",
		Recommendation: "Remove author and copyright EXIF fields if the attribution is unintended.",
	},
	"exif_camera": {
		Severity:       SeverityMedium,
		Impact:         "A published image reveals the camera make and model used to take it.",
		Recommendation: "Strip EXIF metadata if device information should stay private.",
	},
	"exif_computer": {
		Severity:       SeverityMedium,
		Impact:         "A published image contains the name of the computer used to process it.",
		Recommendation: "Strip EXIF metadata from the image before publishing.",
	},
	"exif_software": {
		Severity:       SeverityLow,
		Impact:         "A published image reveals the editing software or operating system used.",
		Recommendation: "Strip EXIF metadata if tooling information should stay private.",
	},
	"exif_datetime": {
		Severity:       SeverityLow,
		Impact:         "A published image contains original timestamps that can hint at timezone and habits.",
		Recommendation: "Strip EXIF metadata if capture times should stay private.",
	},
}

// LookupFindingInfo returns the metadata for a finding type.
// Unknown types default to SeverityInfo with empty guidance.
func LookupFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{Severity: SeverityInfo}
}
