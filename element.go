package inflate

import (
	"fmt"

	"golang.org/x/net/html"
)

// Element binds a component wrapper to its node.
//
// Wrapper types embed *Element and are built either around a node already
// in the document (Bind) or around a freshly inflated definition
// (Inflater.NewElement):
//
//	type Card struct {
//	    *inflate.Element
//	    title *html.Node
//	}
//
//	func NewCard(el *inflate.Element) (*Card, error) {
//	    c := &Card{Element: el}
//	    return c, inflate.Construct(el, nil, func(el *inflate.Element) error {
//	        c.title = el.ElementByID("title")
//	        return nil
//	    })
//	}
type Element struct {
	Node *html.Node
}

// Bind wraps a node that is already part of a tree.
func Bind(n *html.Node) *Element {
	return &Element{Node: n}
}

// NewElement inflates the named definition into a detached node and wraps it.
func (inf *Inflater) NewElement(name string) (*Element, error) {
	n, err := inf.Inflate(name)
	if err != nil {
		return nil, err
	}
	return &Element{Node: n}, nil
}

// ElementByID looks up a descendant of the element's node by id.
func (e *Element) ElementByID(id string) *html.Node {
	return ElementByID(e.Node, id)
}

// Init is one construction step of a component wrapper.
type Init func(el *Element) error

// Construct runs base, when non-nil, and then init on el. Wrappers that
// extend another wrapper pass that wrapper's Init as base.
func Construct(el *Element, base, init Init) error {
	if el == nil || el.Node == nil {
		return fmt.Errorf("inflate: construct on nil element")
	}
	if base != nil {
		if err := base(el); err != nil {
			return fmt.Errorf("inflate: base construction: %w", err)
		}
	}
	if init != nil {
		return init(el)
	}
	return nil
}
