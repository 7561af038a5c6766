package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute on n, or "" if absent.
func Attr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// SetAttr sets the named attribute on n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes the named attribute from n if present.
func RemoveAttr(n *html.Node, key string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass reports whether n's class attribute contains the given class.
// Class matching is whitespace-delimited, as in the DOM classList.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// IsElement reports whether n is an element node with the given tag name.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// IsHeading reports whether n is an h1 through h6 element.
func IsHeading(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// Walk visits root and all its descendants in depth-first order.
func Walk(root *html.Node, fn func(*html.Node)) {
	if root == nil {
		return
	}
	fn(root)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Find returns the first node in depth-first order for which pred returns
// true, or nil if no node matches.
func Find(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	if pred(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns all nodes in depth-first order for which pred returns true.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	nodes := make([]*html.Node, 0)
	Walk(root, func(n *html.Node) {
		if pred(n) {
			nodes = append(nodes, n)
		}
	})
	return nodes
}

// Detach removes n from its parent. It is a no-op if n has no parent.
func Detach(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// FirstElementChild returns the first child of n that is an element node,
// skipping text and comment nodes.
func FirstElementChild(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// NewElement creates a detached element node with the given tag name.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type: html.ElementNode,
		Data: tag,
	}
}

// Parse parses an HTML document from r.
// It is a thin wrapper over html.Parse so callers don't import x/net/html
// just for parsing.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// Render serializes the document rooted at n to w.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}
