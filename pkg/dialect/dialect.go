// Package dialect pairs a macro table with a paramstyle.
//
// A Dialect is everything the translator needs to know about a backend: how
// portability macros expand and how bind parameters are spelled. Concrete
// dialects are registered from pkg/dialects/*/ packages.
package dialect

import (
	"fmt"

	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/params"
)

// Dialect is an immutable macro table and paramstyle pair.
type Dialect struct {
	Name        string
	Description string

	macros *macro.Table
	style  params.Style
}

// Macros returns the dialect's macro table.
func (d *Dialect) Macros() *macro.Table { return d.macros }

// Style returns the dialect's paramstyle.
func (d *Dialect) Style() params.Style { return d.style }

// NewRegistry returns an empty parameter registry in the dialect's style.
func (d *Dialect) NewRegistry() params.Registry { return params.New(d.style) }

// WithStyle returns a copy of d that binds parameters in style s. The macro
// table is shared.
func (d *Dialect) WithStyle(s params.Style) *Dialect {
	cp := *d
	cp.style = s
	return &cp
}

func (d *Dialect) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.style)
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	d Dialect
}

// NewDialect starts a dialect with the given name. The default style is
// named and the macro table is empty.
func NewDialect(name string) *Builder {
	return &Builder{d: Dialect{Name: name, style: params.Named}}
}

// From starts a builder from an existing dialect, under a new name.
func From(base *Dialect, name string) *Builder {
	b := &Builder{d: *base}
	b.d.Name = name
	return b
}

// Macros sets the macro table.
func (b *Builder) Macros(t *macro.Table) *Builder {
	b.d.macros = t
	return b
}

// Style sets the paramstyle.
func (b *Builder) Style(s params.Style) *Builder {
	b.d.style = s
	return b
}

// Description sets a one-line description shown by the CLI.
func (b *Builder) Description(desc string) *Builder {
	b.d.Description = desc
	return b
}

// Build returns the dialect. A dialect without a name is a programming
// error and panics.
func (b *Builder) Build() *Dialect {
	if b.d.Name == "" {
		panic("dialect: name is required")
	}
	d := b.d
	if d.macros == nil {
		d.macros = macro.NewBuilder().Build()
	}
	return &d
}
