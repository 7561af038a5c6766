package transform

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/philong6297/endnotes/internal/dom"
	"github.com/philong6297/endnotes/internal/model"
)

// ExternalLinks hardens off-site anchors: links leaving the site open in a
// new tab (target="_blank") and carry rel="noopener" so the destination page
// cannot reach back into the opener window.
//
// Link classification mirrors how crawled links are sorted into internal and
// external buckets: relative URLs and URLs on the site's own host are
// internal and left alone; only absolute http/https links to other hosts are
// rewritten.
type ExternalLinks struct {
	// baseHost is the site's own hostname. When empty, every absolute
	// http/https link counts as external.
	baseHost string
}

// NewExternalLinks creates the transform for a site served at baseURL.
// An empty or unparsable baseURL leaves baseHost empty.
func NewExternalLinks(baseURL string) *ExternalLinks {
	e := &ExternalLinks{}
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil {
			e.baseHost = u.Hostname()
		}
	}
	return e
}

// Name returns the transform name.
func (e *ExternalLinks) Name() string {
	return "external_links"
}

// Apply rewrites every external anchor in the document.
func (e *ExternalLinks) Apply(doc *html.Node, report *model.PageReport) error {
	changed := false

	dom.Walk(doc, func(n *html.Node) {
		if !dom.IsElement(n, "a") {
			return
		}
		href := dom.Attr(n, "href")
		if !e.isExternal(href) {
			return
		}

		if dom.Attr(n, "target") == "" {
			dom.SetAttr(n, "target", "_blank")
			changed = true
		}
		if rel := dom.Attr(n, "rel"); !relContains(rel, "noopener") {
			if rel == "" {
				dom.SetAttr(n, "rel", "noopener")
			} else {
				dom.SetAttr(n, "rel", rel+" noopener")
			}
			changed = true
		}
	})

	if changed {
		report.AddTransform(e.Name())
	}
	return nil
}

// isExternal reports whether href points off-site.
// Malformed URLs are treated as internal: rewriting them could not improve
// anything and the silent-skip policy applies.
func (e *ExternalLinks) isExternal(href string) bool {
	if href == "" {
		return false
	}

	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := u.Hostname()
	if host == "" {
		return false
	}
	return !strings.EqualFold(host, e.baseHost)
}

// relContains reports whether the whitespace-delimited rel attribute value
// already includes the given token.
func relContains(rel, token string) bool {
	for _, t := range strings.Fields(rel) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}
