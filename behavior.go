package inflate

// BehaviorSink executes behavior code: the script region of a bundle or the
// full text of a .js resource. Calls arrive in registration order for .js
// resources and synchronously while a bundle is being applied.
type BehaviorSink interface {
	RunBehavior(source, code string) error
}

// BehaviorFunc adapts a function to BehaviorSink.
type BehaviorFunc func(source, code string) error

// RunBehavior calls f.
func (f BehaviorFunc) RunBehavior(source, code string) error {
	return f(source, code)
}

// ScriptSink appends each behavior as a script element at the end of the
// document body. A browser runs them in the order they arrived, after the
// markup in front of them has been parsed.
type ScriptSink struct {
	Doc *Document
}

// RunBehavior appends code to the end of the document body.
func (s ScriptSink) RunBehavior(source, code string) error {
	s.Doc.AppendScript(source, code)
	return nil
}
