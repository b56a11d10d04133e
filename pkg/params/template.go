package params

import "slices"

// Template is the immutable registration sequence of one statement. Cached
// translations keep a Template and instantiate a fresh registry from it for
// every execution.
type Template struct {
	style Style
	calls []string
}

// Style returns the template's paramstyle.
func (t Template) Style() Style { return t.style }

// Calls returns the registered names in call order, repeats included.
func (t Template) Calls() []string { return slices.Clone(t.calls) }

// Instantiate returns a fresh registry seeded with the template's
// registrations.
func (t Template) Instantiate() Registry {
	r := New(t.style)
	for _, name := range t.calls {
		r.Register(name)
	}
	return r
}

// Recorder is a Registry that remembers its registration sequence.
type Recorder struct {
	Registry
	calls []string
}

// NewRecorder returns an empty recording registry for style.
func NewRecorder(style Style) *Recorder {
	return &Recorder{Registry: New(style)}
}

// Register implements Registry.
func (r *Recorder) Register(name string) string {
	r.calls = append(r.calls, name)
	return r.Registry.Register(name)
}

// Template returns the registrations so far.
func (r *Recorder) Template() Template {
	return Template{style: r.Style(), calls: slices.Clone(r.calls)}
}

// Coder is implemented by coded domain constants that bind as their
// integer code.
type Coder interface {
	IntCode() int
}

// Normalize returns a copy of values with every Coder replaced by its
// integer code. A nil map yields an empty one.
func Normalize(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if c, ok := v.(Coder); ok {
			v = c.IntCode()
		}
		out[k] = v
	}
	return out
}
