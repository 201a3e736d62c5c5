package inflate

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Inflate materializes the named definition as a detached div carrying the
// definition's attributes, with its body parsed as children. Markers inside
// the body are expanded before it returns.
func (inf *Inflater) Inflate(name string) (*html.Node, error) {
	return inf.inflate(name, nil)
}

func (inf *Inflater) inflate(name string, stack []string) (*html.Node, error) {
	inf.trace("inflate", zap.String("name", name))

	if slices.Contains(stack, name) {
		return nil, fmt.Errorf("%w: %s",
			ErrRecursiveDefinition, strings.Join(append(slices.Clip(stack), name), " > "))
	}
	def, ok := inf.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDefinitionNotFound, name)
	}

	wrapper := newElement(atom.Div)
	nodes, err := html.ParseFragment(strings.NewReader(def.Body), wrapper)
	if err != nil {
		return nil, fmt.Errorf("inflate: parsing body of %q: %w", name, err)
	}
	for _, n := range nodes {
		wrapper.AppendChild(n)
	}
	for _, a := range def.Attrs {
		SetAttr(wrapper, a.Name, a.Value)
	}

	inf.expand(wrapper, append(slices.Clip(stack), name))
	return wrapper, nil
}

// Expand walks n and its descendants in document order and inflates every
// element carrying the marker attribute. Unknown names are reported and
// left in place with their marker.
func (inf *Inflater) Expand(n *html.Node) {
	inf.expand(n, nil)
}

// ExpandDocument expands the document body.
func (inf *Inflater) ExpandDocument() {
	inf.trace("inflate: document")
	inf.Expand(inf.doc.Body())
}

func (inf *Inflater) expand(n *html.Node, stack []string) {
	if n == nil {
		return
	}
	var moved *html.Node
	if n.Type == html.ElementNode {
		if name, ok := Attr(n, inf.marker); ok && name != "" {
			moved = inf.expandMarker(n, name, stack)
		}
	}
	// Nodes moved in from the wrapper were expanded while still detached.
	for c := n.FirstChild; c != nil && c != moved; c = c.NextSibling {
		inf.expand(c, stack)
	}
}

// expandMarker inflates name into n and returns the first node moved in,
// or nil when nothing was added.
func (inf *Inflater) expandMarker(n *html.Node, name string, stack []string) *html.Node {
	wrapper, err := inf.inflate(name, stack)
	if err != nil {
		inf.report(err, "inflate: marker left unexpanded", zap.String("name", name))
		return nil
	}
	moved := wrapper.FirstChild

	// Snapshot first: detaching a child breaks the sibling chain being walked.
	var children []*html.Node
	for c := wrapper.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	for _, c := range children {
		wrapper.RemoveChild(c)
		n.AppendChild(c)
	}

	for _, a := range wrapper.Attr {
		if a.Val == "" {
			continue
		}
		if a.Key == classAttr {
			mergeClasses(n, a.Val)
		} else {
			SetAttr(n, a.Key, a.Val)
		}
	}

	RemoveAttr(n, inf.marker)
	return moved
}

// Component renders a freshly inflated instance of the named definition.
func (inf *Inflater) Component(name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		n, err := inf.Inflate(name)
		if err != nil {
			return err
		}
		return html.Render(w, n)
	})
}
