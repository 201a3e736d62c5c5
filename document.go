package inflate

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is the live tree that bundles inject into and that placeholder
// markers are expanded in. The caller owns it; the engine only mutates it in
// place.
type Document struct {
	root *html.Node
}

// NewDocument returns an empty html/head/body document.
func NewDocument() *Document {
	doc, err := ParseDocument(strings.NewReader("<!DOCTYPE html><html><head></head><body></body></html>"))
	if err != nil {
		// html.Parse only fails on reader errors.
		panic("inflate: parsing empty document: " + err.Error())
	}
	return doc
}

// ParseDocument parses a full HTML page.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// DocumentFromNode wraps an existing tree.
func DocumentFromNode(root *html.Node) *Document {
	return &Document{root: root}
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Head returns the head element, creating it under the html element (or
// the root) when the tree has none.
func (d *Document) Head() *html.Node {
	if head := findElement(d.root, atom.Head); head != nil {
		return head
	}
	parent := findElement(d.root, atom.Html)
	if parent == nil {
		parent = d.root
	}
	head := newElement(atom.Head)
	parent.InsertBefore(head, parent.FirstChild)
	return head
}

// Body returns the body element, or the root when the tree has none.
func (d *Document) Body() *html.Node {
	if body := findElement(d.root, atom.Body); body != nil {
		return body
	}
	return d.root
}

// InsertStyle inserts css as a style element at the front of the head, ahead
// of every style already there (the page's own styles included).
func (d *Document) InsertStyle(css string) *html.Node {
	style := newElement(atom.Style)
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	head := d.Head()
	head.InsertBefore(style, head.FirstChild)
	return style
}

// AppendScript appends a script element to the end of the body. source is
// recorded in a data-inflate-src attribute when non-empty.
func (d *Document) AppendScript(source, code string) *html.Node {
	script := newElement(atom.Script)
	if source != "" {
		SetAttr(script, "data-inflate-src", source)
	}
	script.AppendChild(&html.Node{Type: html.TextNode, Data: code})
	d.Body().AppendChild(script)
	return script
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning an empty string on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Component exposes the document as a templ component.
func (d *Document) Component() templ.Component {
	return NodeComponent(d.root)
}

// NodeComponent renders n (and its subtree) as a templ component.
func NodeComponent(n *html.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if n == nil {
			return nil
		}
		return html.Render(w, n)
	})
}
