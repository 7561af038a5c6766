package transform

import (
	"golang.org/x/net/html"

	"github.com/philong6297/endnotes/internal/model"
)

// Transform rewrites a parsed HTML document in place.
// Implementations must treat every selector miss as a silent no-op:
// a page that lacks the expected elements is left untouched and no error
// is surfaced.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows transforms to carry selector configuration
// 2. It provides a Name() method for logging and reporting
// 3. It mirrors how pipeline steps are composed elsewhere in the codebase
type Transform interface {
	// Apply mutates doc in place. When the transform changed the document
	// it records itself on the report via AddTransform. Errors are reserved
	// for conditions outside the document (none exist today); missing
	// elements never produce one.
	Apply(doc *html.Node, report *model.PageReport) error

	// Name returns the transform's name for logging and reporting.
	Name() string
}
