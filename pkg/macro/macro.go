// Package macro expands portability macros such as [:table name=foo] into
// backend-specific SQL text.
//
// A Table maps operation names to handlers. Tables are assembled once with
// a Builder, usually while a dialect is initialised, and are read-only
// afterwards.
package macro

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/token"
)

// Arg is one key=value pair of an invocation.
type Arg struct {
	Key   string
	Value string
}

// Invocation is a single [:op key=value ...] occurrence.
type Invocation struct {
	Name string
	Pos  token.Position
	Args []Arg
}

// Kwargs returns the arguments as a map. A key given twice is a
// ProgrammingError.
func (inv Invocation) Kwargs() (Args, error) {
	args := make(Args, len(inv.Args))
	for _, a := range inv.Args {
		if _, dup := args[a.Key]; dup {
			return nil, dberr.Errorf(dberr.KindProgramming, "[:%s] got argument %q twice", inv.Name, a.Key)
		}
		args[a.Key] = a.Value
	}
	return args, nil
}

func (inv Invocation) String() string {
	var b strings.Builder
	b.WriteString("[:")
	b.WriteString(inv.Name)
	for _, a := range inv.Args {
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value)
	}
	b.WriteString("]")
	return b.String()
}

// Args are the keyword arguments passed to a handler.
type Args map[string]string

// Handler expands one invocation.
type Handler func(args Args, mc Context) (string, error)

// ConfigSource provides settings for get_config.
type ConfigSource interface {
	Get(key string) (any, bool)
}

// ConstantResolver provides domain constants for get_constant.
type ConstantResolver interface {
	Lookup(name string) (any, bool)
}

// Context is handed to every handler. It is read-only.
type Context struct {
	DB        any
	Config    ConfigSource
	Constants ConstantResolver

	// NewConstants builds a resolver on demand when Constants is nil.
	NewConstants func() (ConstantResolver, error)

	Logger *slog.Logger
}

func (mc Context) logger() *slog.Logger {
	if mc.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return mc.Logger
}

// Table is an immutable set of macro operations.
type Table struct {
	handlers map[string]Handler
}

// Call runs the handler registered for name. Unknown operations are a
// ProgrammingError. Errors from the handler keep their canonical kind and
// default to ProgrammingError.
func (t *Table) Call(name string, args Args, mc Context) (string, error) {
	h, ok := t.handlers[name]
	if !ok {
		return "", dberr.Errorf(dberr.KindProgramming, "unknown portability macro [:%s]", name)
	}
	out, err := h(args, mc)
	if err != nil {
		return "", opError(name, err)
	}
	return out, nil
}

// Expand runs an invocation.
func (t *Table) Expand(inv Invocation, mc Context) (string, error) {
	args, err := inv.Kwargs()
	if err != nil {
		return "", err
	}
	return t.Call(inv.Name, args, mc)
}

// Contains reports whether name is a registered operation.
func (t *Table) Contains(name string) bool {
	_, ok := t.handlers[name]
	return ok
}

// Names returns the registered operation names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func opError(name string, err error) error {
	var de *dberr.Error
	if errors.As(err, &de) {
		return &dberr.Error{Kind: de.Kind, Message: fmt.Sprintf("[:%s] %s", name, de.Message), Cause: de.Cause}
	}
	return dberr.Errorf(dberr.KindProgramming, "[:%s] %w", name, err)
}

// Builder assembles a Table.
type Builder struct {
	handlers map[string]Handler
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{handlers: make(map[string]Handler)}
}

// From returns a Builder holding the operations of t, for dialects that
// share most of another dialect's handlers.
func From(t *Table) *Builder {
	b := NewBuilder()
	for name, h := range t.handlers {
		b.handlers[name] = h
	}
	return b
}

// Register adds an operation. It panics if name is already registered or
// is not a valid identifier, since both are programming mistakes made at
// initialisation time.
func (b *Builder) Register(name string, h Handler) *Builder {
	if !validName(name) {
		panic(fmt.Sprintf("macro: invalid operation name %q", name))
	}
	if _, dup := b.handlers[name]; dup {
		panic(fmt.Sprintf("macro: operation %q registered twice", name))
	}
	b.handlers[name] = h
	return b
}

// Set adds or replaces an operation.
func (b *Builder) Set(name string, h Handler) *Builder {
	if !validName(name) {
		panic(fmt.Sprintf("macro: invalid operation name %q", name))
	}
	b.handlers[name] = h
	return b
}

// Has reports whether name has been registered on the builder.
func (b *Builder) Has(name string) bool {
	_, ok := b.handlers[name]
	return ok
}

// Build returns the Table. The builder can keep being used; later changes
// do not affect tables already built.
func (b *Builder) Build() *Table {
	handlers := make(map[string]Handler, len(b.handlers))
	for name, h := range b.handlers {
		handlers[name] = h
	}
	return &Table{handlers: handlers}
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
