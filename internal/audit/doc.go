// Package audit inspects assets referenced by generated pages for
// information the author probably didn't mean to publish.
//
// The only auditor today is ImageAuditor, which extracts EXIF metadata from
// local JPEG/TIFF/HEIC images and flags GPS coordinates, device serial
// numbers, author fields, software names, and timestamps. Audits are
// report-only: assets are never modified.
package audit
