package dialect

import (
	"testing"

	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	macros := macro.NewBuilder().Register("now", macro.Literal("NOW()")).Build()
	d := NewDialect("test").
		Macros(macros).
		Style(params.Qmark).
		Description("test dialect").
		Build()

	assert.Equal(t, "test", d.Name)
	assert.Equal(t, "test dialect", d.Description)
	assert.Equal(t, params.Qmark, d.Style())
	assert.Same(t, macros, d.Macros())
	assert.Equal(t, params.Qmark, d.NewRegistry().Style())
	assert.Equal(t, "test (qmark)", d.String())
}

func TestBuilder_Defaults(t *testing.T) {
	d := NewDialect("bare").Build()
	assert.Equal(t, params.Named, d.Style())
	require.NotNil(t, d.Macros())
	assert.Empty(t, d.Macros().Names())

	assert.Panics(t, func() { NewDialect("").Build() })
}

func TestWithStyle(t *testing.T) {
	d := NewDialect("base").Style(params.Named).Build()
	cp := d.WithStyle(params.PyFormat)

	assert.Equal(t, params.PyFormat, cp.Style())
	assert.Equal(t, params.Named, d.Style(), "original must not change")
	assert.Same(t, d.Macros(), cp.Macros())
}

func TestFrom(t *testing.T) {
	base := NewDialect("base").Style(params.Named).Description("base").Build()
	derived := From(base, "derived").Style(params.Dollar).Build()

	assert.Equal(t, "derived", derived.Name)
	assert.Equal(t, params.Dollar, derived.Style())
	assert.Equal(t, "base", derived.Description)
	assert.Same(t, base.Macros(), derived.Macros())
	assert.Equal(t, "base", base.Name)
}

func TestRegistry(t *testing.T) {
	d := NewDialect("Registry_Test").Build()
	Register(d)

	got, ok := Get("registry_test")
	require.True(t, ok)
	assert.Same(t, d, got)

	got, ok = Get("REGISTRY_TEST")
	require.True(t, ok)
	assert.Same(t, d, got)

	assert.Contains(t, List(), "registry_test")

	_, ok = Get("no_such_dialect")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	Register(NewDialect("lookup_test").Build())

	d, err := Lookup("lookup_test")
	require.NoError(t, err)
	assert.Equal(t, "lookup_test", d.Name)

	_, err = Lookup("")
	assert.ErrorIs(t, err, ErrDialectRequired)

	_, err = Lookup("nope")
	var ue *UnknownDialectError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "nope", ue.Name)
	assert.Contains(t, err.Error(), "lookup_test")
}
