package inflate

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/pthm/inflate/lib/bundle"
)

// parsePage parses page as a full document.
func parsePage(t *testing.T, page string) *Document {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	return doc
}

// define registers the definitions of a bundle text directly.
func define(inf *Inflater, source, text string) {
	inf.Registry().Add(source, bundle.Parse(text).Definitions...)
}

// renderInner renders the children of n.
func renderInner(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			t.Fatalf("html.Render() error = %v", err)
		}
	}
	return buf.String()
}

// bodyHTML renders the document body's children.
func bodyHTML(t *testing.T, doc *Document) string {
	t.Helper()
	return renderInner(t, doc.Body())
}
