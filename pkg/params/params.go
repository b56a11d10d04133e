// Package params converts canonical :name placeholders into a driver's
// paramstyle and shapes bound values to match.
//
// A Registry is created per statement. Every bind parameter found while
// translating is registered in order; Register returns the placeholder text
// to splice into the SQL. Convert then turns a name to value mapping into
// the positional or keyed values the driver expects.
package params

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/leapstack-labs/portsql/pkg/dberr"
)

// Style is a DB-API paramstyle.
type Style int

// Supported paramstyles.
const (
	Qmark    Style = iota // ?
	Format                // %s
	Numeric               // :1
	Named                 // :name
	PyFormat              // %(name)s
	Dollar                // $1, used by pgx, lib/pq and duckdb
)

var styleNames = map[Style]string{
	Qmark:    "qmark",
	Format:   "format",
	Numeric:  "numeric",
	Named:    "named",
	PyFormat: "pyformat",
	Dollar:   "dollar",
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// Keyed reports whether the style binds values by name.
func (s Style) Keyed() bool {
	return s == Named || s == PyFormat
}

// ParseStyle returns the style with the given DB-API name.
func ParseStyle(name string) (Style, error) {
	for s, n := range styleNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown paramstyle %q (want one of qmark, format, numeric, named, pyformat, dollar)", name)
}

// Styles returns all supported styles.
func Styles() []Style {
	return []Style{Qmark, Format, Numeric, Named, PyFormat, Dollar}
}

// Registry records the bind parameters of one statement.
type Registry interface {
	// Register records an occurrence of name and returns its placeholder.
	// Registering a name again returns the same placeholder text.
	Register(name string) string

	// Convert shapes values for the driver. It fails with a *MissingError
	// if a registered name has no value.
	Convert(values map[string]any) (Bound, error)

	// Contains reports whether name has been registered.
	Contains(name string) bool

	// Names returns the unique registered names in first-seen order.
	Names() []string

	// Style returns the registry's paramstyle.
	Style() Style
}

// New returns an empty registry for the given style.
func New(style Style) Registry {
	switch style {
	case Qmark:
		return &ordered{style: style, placeholder: "?"}
	case Format:
		return &ordered{style: style, placeholder: "%s"}
	case Numeric:
		return &indexed{style: style, prefix: ":"}
	case Dollar:
		return &indexed{style: style, prefix: "$"}
	case Named:
		return &keyed{style: style, format: ":%s"}
	case PyFormat:
		return &keyed{style: style, format: "%%(%s)s"}
	default:
		panic(fmt.Sprintf("params: unknown style %d", int(style)))
	}
}

// MissingError is returned by Convert when a registered name has no value.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing value for bind parameter :%s", e.Name)
}

// Is makes a missing value match dberr.ErrValue.
func (e *MissingError) Is(target error) bool {
	return target == dberr.ErrValue
}

// Bound holds driver-shaped values. Exactly one of Positional and Named is
// set, according to the style's Keyed method.
type Bound struct {
	Positional []any
	Named      map[string]any

	// order of Named keys, as registered
	names []string
}

// Len returns the number of bound values.
func (b Bound) Len() int {
	if b.Named != nil {
		return len(b.Named)
	}
	return len(b.Positional)
}

// Args returns the values as database/sql arguments. Named values become
// sql.NamedArg in registration order.
func (b Bound) Args() []any {
	if b.Named == nil {
		return b.Positional
	}
	args := make([]any, 0, len(b.names))
	for _, name := range b.names {
		args = append(args, sql.Named(name, b.Named[name]))
	}
	return args
}

// Value returns the values in the shape a DB-API driver expects: a slice for
// positional styles and a map for keyed ones.
func (b Bound) Value() any {
	if b.Named != nil {
		return b.Named
	}
	return b.Positional
}

// names is the shared bookkeeping of unique names in first-seen order.
type names struct {
	order []string
	index map[string]int // name -> 1-based position in order
}

func (n *names) add(name string) int {
	if i, ok := n.index[name]; ok {
		return i
	}
	if n.index == nil {
		n.index = make(map[string]int)
	}
	n.order = append(n.order, name)
	n.index[name] = len(n.order)
	return len(n.order)
}

func (n *names) Contains(name string) bool {
	_, ok := n.index[name]
	return ok
}

func (n *names) Names() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

func (n *names) check(values map[string]any) error {
	for _, name := range n.order {
		if _, ok := values[name]; !ok {
			return &MissingError{Name: name}
		}
	}
	return nil
}

// ordered emits the same placeholder for every occurrence and binds one
// value per occurrence (qmark, format).
type ordered struct {
	names
	style       Style
	placeholder string
	calls       []string
}

func (r *ordered) Register(name string) string {
	r.add(name)
	r.calls = append(r.calls, name)
	return r.placeholder
}

func (r *ordered) Convert(values map[string]any) (Bound, error) {
	if err := r.check(values); err != nil {
		return Bound{}, err
	}
	out := make([]any, len(r.calls))
	for i, name := range r.calls {
		out[i] = values[name]
	}
	return Bound{Positional: out}, nil
}

func (r *ordered) Style() Style { return r.style }

// indexed numbers unique names in first-seen order (numeric, dollar).
type indexed struct {
	names
	style  Style
	prefix string
}

func (r *indexed) Register(name string) string {
	return fmt.Sprintf("%s%d", r.prefix, r.add(name))
}

func (r *indexed) Convert(values map[string]any) (Bound, error) {
	if err := r.check(values); err != nil {
		return Bound{}, err
	}
	out := make([]any, len(r.order))
	for i, name := range r.order {
		out[i] = values[name]
	}
	return Bound{Positional: out}, nil
}

func (r *indexed) Style() Style { return r.style }

// keyed keeps names and binds by name (named, pyformat).
type keyed struct {
	names
	style  Style
	format string
}

func (r *keyed) Register(name string) string {
	r.add(name)
	return fmt.Sprintf(r.format, name)
}

func (r *keyed) Convert(values map[string]any) (Bound, error) {
	if err := r.check(values); err != nil {
		return Bound{}, err
	}
	out := make(map[string]any, len(r.order))
	for _, name := range r.order {
		out[name] = values[name]
	}
	return Bound{Named: out, names: r.Names()}, nil
}

func (r *keyed) Style() Style { return r.style }
