package inflate

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExpand_ClassUnion(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		defClass string
		want     string
	}{
		{"both preserved", `class="y"`, "x", "y x"},
		{"no existing class", ``, "x", "x"},
		{"duplicate not added", `class="x y"`, "x", "x y"},
		{"multiple tokens", `class="a"`, "b a c", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parsePage(t, `<div id="t" inflate="C" `+tt.existing+`></div>`)
			inf := New(doc)
			define(inf, "c.html", `<body name="C" class="`+tt.defClass+`"></body>`)

			inf.ExpandDocument()

			target := ElementByID(doc.Root(), "t")
			got, _ := Attr(target, "class")
			if got != tt.want {
				t.Errorf("class = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpand_AttributesOverwriteAndSkipEmpty(t *testing.T) {
	doc := parsePage(t, `<div id="t" inflate="C" title="old" data-keep="yes"></div>`)
	inf := New(doc)
	define(inf, "c.html", `<body name="C" title="new" data-keep="" role="note"></body>`)

	inf.ExpandDocument()

	target := ElementByID(doc.Root(), "t")
	for attr, want := range map[string]string{"title": "new", "data-keep": "yes", "role": "note"} {
		if got, _ := Attr(target, attr); got != want {
			t.Errorf("%s = %q, want %q", attr, got, want)
		}
	}
	if _, ok := Attr(target, DefaultMarker); ok {
		t.Error("marker should be removed after expansion")
	}
}

func TestExpand_AppendsAfterExistingChildren(t *testing.T) {
	doc := parsePage(t, `<div inflate="C"><p>old</p></div>`)
	inf := New(doc)
	define(inf, "c.html", `<body name="C"><b>one</b><i>two</i></body>`)

	inf.ExpandDocument()

	want := `<div><p>old</p><b>one</b><i>two</i></div>`
	if diff := cmp.Diff(want, bodyHTML(t, doc)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestExpand_NestedMarkersInSamePass(t *testing.T) {
	doc := parsePage(t, `<div inflate="Outer"></div>`)
	inf := New(doc)
	define(inf, "c.html", `
<body name="Outer" class="outer"><section inflate="Inner"></section></body>
<body name="Inner" class="inner"><b>in</b></body>`)

	inf.ExpandDocument()

	got := bodyHTML(t, doc)
	want := `<div class="outer"><section class="inner"><b>in</b></section></div>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(got, "inflate=") {
		t.Errorf("marker survived: %s", got)
	}
}

func TestExpand_PreExistingChildMarkers(t *testing.T) {
	doc := parsePage(t, `<div inflate="A"><span inflate="B"></span></div>`)
	inf := New(doc)
	define(inf, "c.html", `<body name="A"><i>a</i></body><body name="B"><b>b</b></body>`)

	inf.ExpandDocument()

	want := `<div><span><b>b</b></span><i>a</i></div>`
	if diff := cmp.Diff(want, bodyHTML(t, doc)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestExpand_UnknownNameReportedAndLeft(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	var reported []error
	doc := parsePage(t, `<div id="t" inflate="Missing"><span inflate="Known"></span></div>`)
	inf := New(doc,
		WithLogger(zap.New(core)),
		WithOnError(func(err error) { reported = append(reported, err) }),
	)
	define(inf, "c.html", `<body name="Known">k</body>`)

	inf.ExpandDocument()

	target := ElementByID(doc.Root(), "t")
	if v, ok := Attr(target, DefaultMarker); !ok || v != "Missing" {
		t.Errorf("marker = %q, %v; want it left in place", v, ok)
	}
	if len(reported) != 1 || !IsNotFound(reported[0]) {
		t.Fatalf("reported = %v, want one not-found error", reported)
	}
	if n := logs.FilterMessage("inflate: marker left unexpanded").Len(); n != 1 {
		t.Errorf("logged %d errors, want 1", n)
	}
	if got := bodyHTML(t, doc); !strings.Contains(got, "<span>k</span>") {
		t.Errorf("children of an unexpanded node should still be walked: %s", got)
	}
}

func TestExpand_FirstDefinitionWins(t *testing.T) {
	doc := parsePage(t, `<div inflate="C"></div>`)
	inf := New(doc)
	define(inf, "first.html", `<body name="C">first</body>`)
	define(inf, "second.html", `<body name="C">second</body>`)

	inf.ExpandDocument()

	if got := bodyHTML(t, doc); got != `<div>first</div>` {
		t.Errorf("body = %q, want first definition", got)
	}
}

func TestExpand_Idempotent(t *testing.T) {
	doc := parsePage(t, `<div inflate="C"></div>`)
	inf := New(doc)
	define(inf, "c.html", `<body name="C" class="c"><b>x</b></body>`)

	inf.ExpandDocument()
	first := bodyHTML(t, doc)
	inf.ExpandDocument()

	if diff := cmp.Diff(first, bodyHTML(t, doc)); diff != "" {
		t.Errorf("second expansion changed the tree (-first +second):\n%s", diff)
	}
}

func TestExpand_SelfReferenceStops(t *testing.T) {
	var reported []error
	doc := parsePage(t, `<div inflate="Loop"></div>`)
	inf := New(doc, WithOnError(func(err error) { reported = append(reported, err) }))
	define(inf, "c.html", `<body name="Loop"><i inflate="Loop"></i></body>`)

	inf.ExpandDocument()

	if len(reported) != 1 || !errors.Is(reported[0], ErrRecursiveDefinition) {
		t.Fatalf("reported = %v, want one recursion error", reported)
	}
	want := `<div><i inflate="Loop"></i></div>`
	if diff := cmp.Diff(want, bodyHTML(t, doc)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestExpand_CustomMarker(t *testing.T) {
	doc := parsePage(t, `<div data-component="C"></div><div inflate="C"></div>`)
	inf := New(doc, WithMarker("data-component"))
	define(inf, "c.html", `<body name="C">c</body>`)

	inf.ExpandDocument()

	want := `<div>c</div><div inflate="C"></div>`
	if diff := cmp.Diff(want, bodyHTML(t, doc)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestInflate_DetachedWrapper(t *testing.T) {
	inf := New(nil)
	define(inf, "c.html", `<body name="Card" class="card" title="t"><h2 id="title">Title</h2></body>`)

	n, err := inf.Inflate("Card")
	if err != nil {
		t.Fatalf("Inflate() error = %v", err)
	}
	if n.Parent != nil {
		t.Error("inflated node should be detached")
	}
	if n.Data != "div" {
		t.Errorf("wrapper tag = %q, want div", n.Data)
	}
	if !HasClass(n, "card") {
		t.Error("wrapper should carry definition class")
	}
	if title := ElementByID(n, "title"); title == nil {
		t.Error("wrapper should contain the body markup")
	}
}

func TestInflate_NotFound(t *testing.T) {
	inf := New(nil)

	_, err := inf.Inflate("Nope")
	if !IsNotFound(err) {
		t.Errorf("Inflate() error = %v, want not found", err)
	}
}

func TestInflater_Component(t *testing.T) {
	inf := New(nil)
	define(inf, "c.html", `<body name="Badge" class="badge">new</body>`)

	var sb strings.Builder
	if err := inf.Component("Badge").Render(t.Context(), &sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := sb.String(); got != `<div class="badge">new</div>` {
		t.Errorf("Component rendered %q", got)
	}

	if err := inf.Component("Missing").Render(t.Context(), &sb); !IsNotFound(err) {
		t.Errorf("Render(missing) error = %v, want not found", err)
	}
}
