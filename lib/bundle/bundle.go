// Package bundle parses inflate bundle files.
//
// A bundle is a plain text document with up to three kinds of regions,
// located by literal markers rather than a markup grammar:
//
//	<html>
//	    <style>styles</style>
//	    <body name="Card" class="card">markup</body>
//	    <body name="Badge" class="badge">markup</body>
//	    <script>behavior</script>
//	</html>
//
// Every region is optional. The markup inside body regions is kept as raw
// text because it is re-parsed as an HTML fragment whenever a definition is
// inflated, so building a tree here would be thrown away.
package bundle

import (
	"fmt"
	"strings"
)

// Region markers.
const (
	styleOpen   = "<style>"
	styleClose  = "</style>"
	bodyOpen    = `<body name="`
	bodyClose   = "</body>"
	scriptOpen  = "<script>"
	scriptClose = "</script>"
)

// Attribute is a name/value pair from a body region's opening tag.
type Attribute struct {
	Name  string
	Value string
}

// Definition is a named piece of markup extracted from a body region.
type Definition struct {
	Name  string
	Attrs []Attribute
	Body  string
}

// Attr returns the value of the named attribute and whether it was present.
func (d Definition) Attr(name string) (string, bool) {
	for _, a := range d.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Malformation records where attribute parsing stopped early.
// Parsing is never aborted: the attributes read before the problem are kept.
type Malformation struct {
	Definition string
	Reason     string
	Remainder  string
}

func (m Malformation) Error() string {
	return fmt.Sprintf("definition %q: %s near %q", m.Definition, m.Reason, m.Remainder)
}

// Bundle is the parsed form of one bundle file.
type Bundle struct {
	Style       string
	Definitions []Definition
	Behavior    string
	Malformed   []Malformation
}

// Names returns the definition names in file order.
func (b *Bundle) Names() []string {
	names := make([]string, 0, len(b.Definitions))
	for _, d := range b.Definitions {
		names = append(names, d.Name)
	}
	return names
}

// Parse scans text in a single forward pass.
func Parse(text string) *Bundle {
	b := &Bundle{}

	pos := 0
	if beg := strings.Index(text, styleOpen); beg >= 0 {
		beg += len(styleOpen)
		if end := strings.Index(text[beg:], styleClose); end >= 0 {
			b.Style = text[beg : beg+end]
			pos = beg + end + len(styleClose)
		}
	}

	for {
		beg := strings.Index(text[pos:], bodyOpen)
		if beg < 0 {
			break
		}
		beg += pos + len(bodyOpen)

		end := strings.IndexByte(text[beg:], '"')
		if end < 0 {
			// Unterminated name: nothing usable follows.
			pos = len(text)
			break
		}
		def := Definition{Name: text[beg : beg+end]}
		beg += end + 1

		tagEnd := strings.IndexByte(text[beg:], '>')
		if tagEnd < 0 {
			def.Attrs = b.parseAttrs(def.Name, text[beg:])
			b.Definitions = append(b.Definitions, def)
			pos = len(text)
			break
		}
		def.Attrs = b.parseAttrs(def.Name, text[beg:beg+tagEnd])
		beg += tagEnd + 1

		closeAt := strings.Index(text[beg:], bodyClose)
		if closeAt < 0 {
			def.Body = text[beg:]
			b.Definitions = append(b.Definitions, def)
			pos = len(text)
			break
		}
		def.Body = text[beg : beg+closeAt]
		b.Definitions = append(b.Definitions, def)
		pos = beg + closeAt + len(bodyClose)
	}

	if beg := strings.Index(text[pos:], scriptOpen); beg >= 0 {
		beg += pos + len(scriptOpen)
		if end := strings.Index(text[beg:], scriptClose); end >= 0 {
			b.Behavior = text[beg : beg+end]
		}
	}

	return b
}

// parseAttrs reads whitespace separated key="value" pairs. It stops at the
// first malformed pair and records why.
func (b *Bundle) parseAttrs(name, s string) []Attribute {
	attrs := []Attribute{}
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" || s == "/" {
			return attrs
		}

		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			b.malformed(name, "missing '='", s)
			return attrs
		}
		key := s[:eq]
		if key == "" {
			b.malformed(name, "empty attribute name", s)
			return attrs
		}
		if strings.ContainsAny(key, " \t\r\n") {
			b.malformed(name, "attribute without value", s)
			return attrs
		}

		rest := s[eq+1:]
		if !strings.HasPrefix(rest, `"`) {
			b.malformed(name, "missing opening quote", s)
			return attrs
		}
		rest = rest[1:]
		q := strings.IndexByte(rest, '"')
		if q < 0 {
			b.malformed(name, "missing closing quote", s)
			return attrs
		}

		attrs = append(attrs, Attribute{Name: key, Value: rest[:q]})
		s = rest[q+1:]
	}
}

func (b *Bundle) malformed(name, reason, rest string) {
	if len(rest) > 32 {
		rest = rest[:32]
	}
	b.Malformed = append(b.Malformed, Malformation{
		Definition: name,
		Reason:     reason,
		Remainder:  rest,
	})
}
