package inflate

import (
	"path"
	"strings"
)

// Kind is how a fetched resource is applied.
type Kind int

const (
	// KindBundle is parsed for style, definitions and behavior.
	KindBundle Kind = iota
	// KindStylesheet is inserted into the document head as a style element.
	KindStylesheet
	// KindBehavior is handed to the behavior sink. Behavior resources run
	// strictly in registration order.
	KindBehavior
)

func (k Kind) String() string {
	switch k {
	case KindBundle:
		return "bundle"
	case KindStylesheet:
		return "stylesheet"
	case KindBehavior:
		return "behavior"
	default:
		return "unknown"
	}
}

// State is the settle state of a requested resource.
type State int

const (
	StatePending State = iota
	StateFulfilled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFulfilled:
		return "fulfilled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resource is the record kept for every identifier passed to Include.
// Records are never removed; they double as the "already requested" set.
type Resource struct {
	ID    string
	Kind  Kind
	State State
	Err   error
}

// Classify picks a Kind from the identifier's suffix. Query strings and
// fragments are ignored, so "app.js?v=2" is a behavior resource.
func Classify(id string) Kind {
	if i := strings.IndexAny(id, "?#"); i >= 0 {
		id = id[:i]
	}
	switch strings.ToLower(path.Ext(id)) {
	case ".js":
		return KindBehavior
	case ".css":
		return KindStylesheet
	default:
		return KindBundle
	}
}
