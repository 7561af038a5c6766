package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	"golang.org/x/net/html"

	"github.com/philong6297/endnotes/internal/dom"
	"github.com/philong6297/endnotes/internal/model"
)

// DefaultMaxImageSize limits how much of an image is read for EXIF
// extraction. 16MB covers photographic JPEGs while bounding memory use.
const DefaultMaxImageSize = 16 * 1024 * 1024

// ImageAuditor extracts and analyzes EXIF metadata from images referenced
// by a page. EXIF data can contain GPS coordinates, device serial numbers,
// author information, and timestamps that quietly identify the person who
// published the image.
//
// The auditor only reads image files inside the site output directory.
// Remote and data: URLs are skipped: the site's own assets are what the
// author controls and can still fix before publishing.
//
// This auditor checks for:
//   - GPS coordinates (location disclosure)
//   - Camera make/model/serial (device identification)
//   - Software information (editing software, OS)
//   - Timestamps (timezone inference)
//   - Author/copyright information (identity disclosure)
type ImageAuditor struct {
	// root is the site output directory images are resolved against.
	root string

	// maxImageSize limits the bytes read per image.
	maxImageSize int64

	// imagePattern matches file extensions of formats that carry EXIF.
	imagePattern *regexp.Regexp

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an ImageAuditor.
type Option func(*ImageAuditor)

// WithMaxImageSize sets the maximum bytes read per image.
func WithMaxImageSize(size int64) Option {
	return func(a *ImageAuditor) {
		if size > 0 {
			a.maxImageSize = size
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *ImageAuditor) {
		a.logger = logger
	}
}

// NewImageAuditor creates an ImageAuditor for images under the given site
// output directory.
func NewImageAuditor(root string, opts ...Option) *ImageAuditor {
	a := &ImageAuditor{
		root:         root,
		maxImageSize: DefaultMaxImageSize,
		// Only JPEG, TIFF, HEIC carry EXIF; PNG and friends are skipped.
		imagePattern: regexp.MustCompile(`(?i)\.(jpe?g|tiff?|heic)$`),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Name returns the auditor name for logging and reporting.
func (a *ImageAuditor) Name() string {
	return "image_audit"
}

// AuditPage inspects every local image the parsed page references and
// records findings on the report. Unreadable or EXIF-free images are
// skipped silently; the audit never fails a page.
func (a *ImageAuditor) AuditPage(ctx context.Context, doc *html.Node, report *model.PageReport) error {
	seen := make(map[string]bool)

	for _, img := range dom.FindAll(doc, func(n *html.Node) bool { return dom.IsElement(n, "img") }) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		src := dom.Attr(img, "src")
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true

		if !a.imagePattern.MatchString(src) {
			continue
		}

		filePath, ok := a.resolveLocal(report.Path, src)
		if !ok {
			continue
		}

		data, err := a.readImage(filePath)
		if err != nil {
			a.logger.Debug("image unreadable, skipping", "src", src, "error", err)
			continue
		}

		for _, f := range a.analyzeImageData(data, src, report.Path) {
			report.AddFinding(f)
		}
	}

	return nil
}

// resolveLocal maps an image src to a file path inside the site directory.
// Remote URLs, data URLs, and paths escaping the root are rejected.
func (a *ImageAuditor) resolveLocal(pagePath, src string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" ||
		strings.Contains(src, "://") ||
		strings.HasPrefix(src, "//") ||
		strings.HasPrefix(src, "data:") {
		return "", false
	}

	// Drop any query or fragment the generator appended.
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}

	var rel string
	if strings.HasPrefix(src, "/") {
		// Site-absolute path.
		rel = path.Clean(src[1:])
	} else {
		// Relative to the page's directory.
		rel = path.Join(path.Dir(pagePath), src)
	}

	if rel == ".." || strings.HasPrefix(rel, "../") {
		// Escapes the site root; not ours to read.
		return "", false
	}

	return filepath.Join(a.root, filepath.FromSlash(rel)), true
}

// readImage reads at most maxImageSize bytes of the image file.
func (a *ImageAuditor) readImage(filePath string) ([]byte, error) {
	f, err := os.Open(filePath) //nolint:gosec // Path is confined to the site root by resolveLocal
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // Read-only file

	data, err := io.ReadAll(io.LimitReader(f, a.maxImageSize))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty image file")
	}
	return data, nil
}

// analyzeImageData extracts EXIF data from image bytes and maps the
// privacy-relevant tags to findings.
func (a *ImageAuditor) analyzeImageData(imageData []byte, imageRef, pagePath string) []model.Finding {
	findings := make([]model.Finding, 0)

	rawExif, err := exif.SearchAndExtractExif(imageData)
	if err != nil || rawExif == nil {
		return findings
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return findings
	}

	location := pagePath + " -> " + imageRef

	for _, entry := range entries {
		tagName := entry.TagName
		value := entry.Formatted

		switch tagName {
		case "GPSLatitude", "GPSLongitude", "GPSLatitudeRef", "GPSLongitudeRef":
			findings = append(findings, model.Finding{
				Type:        "exif_gps",
				Title:       "GPS Coordinates in Image EXIF",
				Description: "A published image contains GPS coordinates in its EXIF metadata. This reveals the location where the image was taken.",
				Severity:    model.SeverityCritical,
				Value:       tagName + ": " + value,
				Location:    location,
			})

		case "Make", "Model":
			findings = append(findings, model.Finding{
				Type:        "exif_camera",
				Title:       "Camera Information in Image EXIF",
				Description: "A published image contains camera make/model information. This can help identify the device used.",
				Severity:    model.SeverityMedium,
				Value:       tagName + ": " + value,
				Location:    location,
			})

		case "SerialNumber", "CameraSerialNumber", "BodySerialNumber", "LensSerialNumber":
			findings = append(findings, model.Finding{
				Type:        "exif_serial",
				Title:       "Device Serial Number in Image EXIF",
				Description: "A published image contains a device serial number. This is a unique identifier that can track the device across photos.",
				Severity:    model.SeverityHigh,
				Value:       tagName + ": " + value,
				Location:    location,
			})

		case "Software", "ProcessingSoftware":
			findings = append(findings, model.Finding{
				Type:        "exif_software",
				Title:       "Software Information in Image EXIF",
				Description: "A published image contains software information that reveals editing tools or operating system used.",
				Severity:    model.SeverityLow,
				Value:       tagName + ": " + value,
				Location:    location,
			})

		case "Artist", "Author", "Copyright", "XPAuthor":
			findings = append(findings, model.Finding{
				Type:        "exif_author",
				Title:       "Author/Copyright Information in Image EXIF",
				Description: "A published image contains author or copyright information that could identify the creator.",
				Severity:    model.SeverityHigh,
				Value:       tagName + ": " + value,
				Location:    location,
			})

		case "DateTimeOriginal", "DateTimeDigitized", "DateTime":
			findings = append(findings, model.Finding{
				Type:        "exif_datetime",
				Title:       "Timestamp in Image EXIF",
				Description: "A published image contains timestamp information. Combined with other data, this can help determine timezone and activity patterns.",
				Severity:    model.SeverityLow,
				Value:       tagName + ": " + value,
				Location:    location,
			})

		case "HostComputer":
			findings = append(findings, model.Finding{
				Type:        "exif_computer",
				Title:       "Host Computer in Image EXIF",
				Description: "A published image contains the name of the computer used to process it.",
				Severity:    model.SeverityMedium,
				Value:       tagName + ": " + value,
				Location:    location,
			})
		}
	}

	return findings
}
