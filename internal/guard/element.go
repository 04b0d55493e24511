package guard

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// Document is a parsed HTML tree with an id index.
//
// The index is built once at parse time. Nodes removed from the tree later
// stay in the index, which is why lookups go through SafeElementByID and
// check that the node is still attached.
type Document struct {
	root *html.Node
	ids  map[string]*html.Node
}

// ParseDocument parses r as HTML and indexes elements by id. The first
// element with a given id wins, matching document order lookup.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, xerrors.Wrap(err, "parse html document")
	}
	return NewDocument(root), nil
}

// NewDocument wraps an already parsed tree.
func NewDocument(root *html.Node) *Document {
	d := &Document{root: root, ids: make(map[string]*html.Node)}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := attr(n, "id"); id != "" {
				if _, seen := d.ids[id]; !seen {
					d.ids[id] = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return d
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	if d == nil {
		return nil
	}
	return d.root
}

// Contains reports whether n is attached to this document's tree.
func (d *Document) Contains(n *html.Node) bool {
	if d == nil || d.root == nil || n == nil {
		return false
	}
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// SafeElementByID returns the element with the given id, or nil when id is
// empty, unknown, or the indexed node is no longer attached to doc.
func SafeElementByID(doc *Document, id string) *html.Node {
	if doc == nil || strings.TrimSpace(id) == "" {
		return nil
	}
	n, ok := doc.ids[id]
	if !ok || n.Type != html.ElementNode {
		return nil
	}
	if !doc.Contains(n) {
		return nil
	}
	return n
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
