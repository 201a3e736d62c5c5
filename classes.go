package inflate

import (
	"strings"

	"golang.org/x/net/html"
)

const classAttr = "class"

// HasClass reports whether n's class attribute contains the token class.
func HasClass(n *html.Node, class string) bool {
	if class == "" {
		return false
	}
	v, _ := Attr(n, classAttr)
	for _, tok := range strings.Fields(v) {
		if tok == class {
			return true
		}
	}
	return false
}

// AddClass appends class to n's class attribute unless already present.
func AddClass(n *html.Node, class string) {
	if class == "" || HasClass(n, class) {
		return
	}
	v, _ := Attr(n, classAttr)
	if v = strings.TrimSpace(v); v != "" {
		v += " "
	}
	SetAttr(n, classAttr, v+class)
}

// RemoveClass removes every occurrence of class from n's class attribute.
func RemoveClass(n *html.Node, class string) {
	if !HasClass(n, class) {
		return
	}
	v, _ := Attr(n, classAttr)
	kept := make([]string, 0)
	for _, tok := range strings.Fields(v) {
		if tok != class {
			kept = append(kept, tok)
		}
	}
	SetAttr(n, classAttr, strings.Join(kept, " "))
}

// ChangeClass adds class when set is true and removes it otherwise.
func ChangeClass(n *html.Node, class string, set bool) {
	if set {
		AddClass(n, class)
	} else {
		RemoveClass(n, class)
	}
}

// ToggleClass flips class on n and reports whether it is now present.
func ToggleClass(n *html.Node, class string) bool {
	on := !HasClass(n, class)
	ChangeClass(n, class, on)
	return on && class != ""
}

// mergeClasses unions the tokens of value into n's class attribute,
// keeping existing tokens first.
func mergeClasses(n *html.Node, value string) {
	for _, tok := range strings.Fields(value) {
		AddClass(n, tok)
	}
}
