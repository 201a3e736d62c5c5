package inflate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

// card and fancyCard mirror how component wrappers extend each other.
type card struct {
	*Element
	title *html.Node
}

func (c *card) init(el *Element) error {
	c.title = el.ElementByID("title")
	if c.title == nil {
		return errors.New("card: no title")
	}
	return nil
}

type fancyCard struct {
	card
	steps []string
}

func newFancyCard(el *Element) (*fancyCard, error) {
	f := &fancyCard{card: card{Element: el}}
	err := Construct(el, func(el *Element) error {
		f.steps = append(f.steps, "card")
		return f.card.init(el)
	}, func(el *Element) error {
		f.steps = append(f.steps, "fancy")
		AddClass(el.Node, "fancy")
		return nil
	})
	return f, err
}

func TestConstruct_BaseBeforeInit(t *testing.T) {
	inf := New(nil)
	define(inf, "c.html", `<body name="Card" class="card"><h2 id="title">T</h2></body>`)

	el, err := inf.NewElement("Card")
	if err != nil {
		t.Fatalf("NewElement() error = %v", err)
	}
	f, err := newFancyCard(el)
	if err != nil {
		t.Fatalf("newFancyCard() error = %v", err)
	}

	if diff := cmp.Diff([]string{"card", "fancy"}, f.steps); diff != "" {
		t.Errorf("construction order mismatch (-want +got):\n%s", diff)
	}
	if f.title == nil || f.title.FirstChild.Data != "T" {
		t.Error("base construction should have bound the title")
	}
	if got, _ := Attr(f.Node, "class"); got != "card fancy" {
		t.Errorf("class = %q, want %q", got, "card fancy")
	}
}

func TestConstruct_BaseFailureStops(t *testing.T) {
	inf := New(nil)
	define(inf, "c.html", `<body name="Card"><p>no title</p></body>`)

	el, err := inf.NewElement("Card")
	if err != nil {
		t.Fatalf("NewElement() error = %v", err)
	}
	f, err := newFancyCard(el)

	if err == nil {
		t.Fatal("newFancyCard() should fail without a title")
	}
	if diff := cmp.Diff([]string{"card"}, f.steps); diff != "" {
		t.Errorf("init should not run after a base failure (-want +got):\n%s", diff)
	}
}

func TestConstruct_NilElement(t *testing.T) {
	if err := Construct(nil, nil, nil); err == nil {
		t.Error("Construct(nil) should fail")
	}
}

func TestBind_ExistingNode(t *testing.T) {
	doc := parsePage(t, `<div id="host"><span id="inner"></span></div>`)

	el := Bind(ElementByID(doc.Root(), "host"))

	if el.ElementByID("inner") == nil {
		t.Error("ElementByID should search the bound node")
	}
}

func TestNewElement_NotFound(t *testing.T) {
	inf := New(nil)
	if _, err := inf.NewElement("Nope"); !IsNotFound(err) {
		t.Errorf("NewElement() error = %v, want not found", err)
	}
}
