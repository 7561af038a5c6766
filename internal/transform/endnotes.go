package transform

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/philong6297/endnotes/internal/dom"
	"github.com/philong6297/endnotes/internal/model"
)

// Default selector conventions for generator-produced end-note markup.
// These match the output of the Markdown citation toolchain: the references
// heading gets an id ending in "-references", the bibliography lands in
// <div id="refs" class="references">, and the footnote block carries the
// ARIA doc-endnotes role.
const (
	// DefaultHeadingSuffix is the id suffix that marks the references heading.
	DefaultHeadingSuffix = "-references"

	// DefaultReferencesID is the id of the rendered bibliography container.
	DefaultReferencesID = "refs"

	// DefaultReferencesClass is the class of the rendered bibliography container.
	DefaultReferencesClass = "references"

	// DefaultEndnotesRole is the ARIA role marking an end-notes region.
	DefaultEndnotesRole = "doc-endnotes"

	// DefaultFootnotesID is the id assigned to the footnotes container.
	DefaultFootnotesID = "footnotes"

	// DefaultWrapperID is the id assigned to the combined end-notes wrapper.
	DefaultWrapperID = "refs-container"

	// DefaultWrapperClass is the class assigned to the combined wrapper so it
	// picks up the theme's footnote styling.
	DefaultWrapperClass = "footnotes"
)

// Endnotes relocates the bibliography so it forms a single combined
// end-notes section with the footnotes at the bottom of the article.
//
// The operation:
//  1. Locate the references heading (id ends with the configured suffix)
//     and the references container (configured id and class). If either is
//     missing the page has no bibliography and nothing happens.
//  2. Detach both from their parent.
//  3. If a footnotes container with the end-notes role exists, give it the
//     fixed footnotes id and drop its leading <hr> separator.
//  4. Wrap the heading and references container in a new div carrying the
//     wrapper id, the footnote styling class, and the end-notes role.
//  5. Append the wrapper as the last child of the original parent.
//
// Running the transform twice is safe: a references container already
// sitting inside the combined wrapper is recognized and skipped.
type Endnotes struct {
	// headingSuffix is the id suffix identifying the references heading.
	headingSuffix string

	// refsID and refsClass identify the references container.
	refsID    string
	refsClass string

	// endnotesRole is the ARIA role marking footnote/end-note regions.
	endnotesRole string

	// footnotesID is the fixed id assigned to the footnotes container.
	footnotesID string

	// wrapperID and wrapperClass are applied to the new combined wrapper.
	wrapperID    string
	wrapperClass string
}

// EndnotesOption configures an Endnotes transform.
type EndnotesOption func(*Endnotes)

// WithHeadingSuffix overrides the references heading id suffix.
func WithHeadingSuffix(suffix string) EndnotesOption {
	return func(e *Endnotes) {
		if suffix != "" {
			e.headingSuffix = suffix
		}
	}
}

// WithReferencesSelector overrides the id and class identifying the
// references container.
func WithReferencesSelector(id, class string) EndnotesOption {
	return func(e *Endnotes) {
		if id != "" {
			e.refsID = id
		}
		if class != "" {
			e.refsClass = class
		}
	}
}

// WithEndnotesRole overrides the ARIA role marking end-note regions.
func WithEndnotesRole(role string) EndnotesOption {
	return func(e *Endnotes) {
		if role != "" {
			e.endnotesRole = role
		}
	}
}

// WithFootnotesID overrides the fixed id assigned to the footnotes container.
func WithFootnotesID(id string) EndnotesOption {
	return func(e *Endnotes) {
		if id != "" {
			e.footnotesID = id
		}
	}
}

// WithWrapperID overrides the id assigned to the combined wrapper.
func WithWrapperID(id string) EndnotesOption {
	return func(e *Endnotes) {
		if id != "" {
			e.wrapperID = id
		}
	}
}

// NewEndnotes creates an Endnotes transform with the default generator
// selector conventions, adjusted by the given options.
func NewEndnotes(opts ...EndnotesOption) *Endnotes {
	e := &Endnotes{
		headingSuffix: DefaultHeadingSuffix,
		refsID:        DefaultReferencesID,
		refsClass:     DefaultReferencesClass,
		endnotesRole:  DefaultEndnotesRole,
		footnotesID:   DefaultFootnotesID,
		wrapperID:     DefaultWrapperID,
		wrapperClass:  DefaultWrapperClass,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Name returns the transform name.
func (e *Endnotes) Name() string {
	return "endnotes"
}

// Apply merges the references block into the footnotes region.
// Pages without a bibliography are left untouched.
func (e *Endnotes) Apply(doc *html.Node, report *model.PageReport) error {
	heading := dom.Find(doc, func(n *html.Node) bool {
		return dom.IsHeading(n) && strings.HasSuffix(dom.Attr(n, "id"), e.headingSuffix)
	})
	refs := dom.Find(doc, func(n *html.Node) bool {
		return dom.IsElement(n, "div") &&
			dom.Attr(n, "id") == e.refsID &&
			dom.HasClass(n, e.refsClass)
	})

	// No bibliography on this page. Articles without citations are the
	// common case, so this is an expected silent skip, not an error.
	if heading == nil || refs == nil {
		return nil
	}

	parent := refs.Parent
	if parent == nil {
		return nil
	}

	// Already merged on a previous run.
	if dom.Attr(parent, "id") == e.wrapperID {
		return nil
	}

	dom.Detach(heading)
	dom.Detach(refs)

	// Normalize the existing footnotes region before the wrapper joins it:
	// pin its id and drop the leading separator rule so the combined section
	// reads as one block.
	if footnotes := e.findFootnotes(doc); footnotes != nil {
		dom.SetAttr(footnotes, "id", e.footnotesID)
		if first := dom.FirstElementChild(footnotes); dom.IsElement(first, "hr") {
			dom.Detach(first)
		}
	}

	wrapper := dom.NewElement("div")
	dom.SetAttr(wrapper, "class", e.wrapperClass)
	dom.SetAttr(wrapper, "id", e.wrapperID)
	dom.SetAttr(wrapper, "role", e.endnotesRole)
	wrapper.AppendChild(heading)
	wrapper.AppendChild(refs)

	parent.AppendChild(wrapper)

	report.AddTransform(e.Name())
	return nil
}

// findFootnotes locates the footnotes container by its end-notes role.
func (e *Endnotes) findFootnotes(doc *html.Node) *html.Node {
	return dom.Find(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && dom.Attr(n, "role") == e.endnotesRole
	})
}
