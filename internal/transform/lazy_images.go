package transform

import (
	"golang.org/x/net/html"

	"github.com/philong6297/endnotes/internal/dom"
	"github.com/philong6297/endnotes/internal/model"
)

// LazyImages adds loading="lazy" to images that don't declare a loading
// behavior, deferring off-screen image fetches on long articles.
// Images with an explicit loading attribute are respected, whatever the
// value: an author who wrote loading="eager" meant it.
type LazyImages struct{}

// NewLazyImages creates the transform.
func NewLazyImages() *LazyImages {
	return &LazyImages{}
}

// Name returns the transform name.
func (l *LazyImages) Name() string {
	return "lazy_images"
}

// Apply annotates every undecorated <img> in the document.
func (l *LazyImages) Apply(doc *html.Node, report *model.PageReport) error {
	changed := false

	dom.Walk(doc, func(n *html.Node) {
		if !dom.IsElement(n, "img") {
			return
		}
		if dom.Attr(n, "loading") != "" {
			return
		}
		dom.SetAttr(n, "loading", "lazy")
		changed = true
	})

	if changed {
		report.AddTransform(l.Name())
	}
	return nil
}
