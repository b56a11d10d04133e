package macro

import (
	"testing"

	"github.com/leapstack-labs/portsql/pkg/constants"
	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialects/oracle"
	"github.com/leapstack-labs/portsql/pkg/dialects/postgres"
	pkgmacro "github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

const auditStar = `
def stamp(col="updated_at"):
    """Sets an audit column to the current time."""
    return col + " = " + now()

def owner():
    return "owner = " + config("owner")

def kind(name):
    return str(constant(name))

def which():
    return quote(dialect())

def bad():
    return 42
`

func loadAudit(t *testing.T) []*Module {
	t.Helper()
	modules, err := NewLoader(writeMacros(t, map[string]string{"audit.star": auditStar})).Load()
	require.NoError(t, err)
	return modules
}

type settings map[string]any

func (s settings) Get(key string) (any, bool) {
	v, ok := s[key]
	return v, ok
}

func TestExtend(t *testing.T) {
	d, err := Extend(postgres.Pgx, loadAudit(t))
	require.NoError(t, err)

	assert.Equal(t, "pgx", d.Name)
	assert.Equal(t, postgres.Pgx.Style(), d.Style())
	assert.True(t, d.Macros().Contains("audit_stamp"))
	assert.True(t, d.Macros().Contains("now"))
	assert.False(t, postgres.Pgx.Macros().Contains("audit_stamp"), "base dialect must not change")

	tr, err := translate.New(d, translate.WithContext(pkgmacro.Context{
		Config:    settings{"owner": "it's me"},
		Constants: constants.New(constants.Code{Name: "entity_account", Value: 17}),
	}))
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"update t set [:audit_stamp] where id = :id", "update t set updated_at = NOW() where id = $1"},
		{"update t set [:audit_stamp col=modified]", "update t set modified = NOW()"},
		{"select * from t where [:audit_owner]", "select * from t where owner = 'it''s me'"},
		{"select * from t where kind = [:audit_kind name=entity_account]", "select * from t where kind = 17"},
		{"select [:audit_which]", "select 'pgx'"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			res, err := tr.Translate(tt.in, map[string]any{"id": 1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.SQL)
		})
	}
}

func TestExtend_PerDialect(t *testing.T) {
	d, err := Extend(oracle.Oracle, loadAudit(t))
	require.NoError(t, err)

	tr, err := translate.New(d)
	require.NoError(t, err)
	res, err := tr.Translate("update t set [:audit_stamp]", nil)
	require.NoError(t, err)
	assert.Equal(t, "update t set updated_at = SYSDATE", res.SQL)
}

func TestExtend_Errors(t *testing.T) {
	d, err := Extend(postgres.Pgx, loadAudit(t))
	require.NoError(t, err)
	table := d.Macros()

	_, err = table.Call("audit_bad", pkgmacro.Args{}, pkgmacro.Context{})
	assert.ErrorIs(t, err, dberr.ErrProgramming)
	assert.Contains(t, err.Error(), "want string")

	_, err = table.Call("audit_owner", pkgmacro.Args{}, pkgmacro.Context{})
	assert.ErrorIs(t, err, dberr.ErrValue)

	_, err = table.Call("audit_stamp", pkgmacro.Args{"nope": "x"}, pkgmacro.Context{})
	assert.ErrorIs(t, err, dberr.ErrProgramming)

	_, err = table.Call("audit_kind", pkgmacro.Args{"name": "missing"}, pkgmacro.Context{
		Constants: constants.New(),
	})
	assert.ErrorIs(t, err, dberr.ErrValue)
}

func TestExtend_Conflict(t *testing.T) {
	m := &Module{
		Namespace: "from",
		Path:      "from.star",
		Functions: map[string]starlark.Callable{"dual": starlark.NewBuiltin("dual", nil)},
	}
	_, err := Extend(postgres.Pgx, []*Module{m})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from_dual")
}

func TestExtend_NoModules(t *testing.T) {
	d, err := Extend(postgres.Pgx, nil)
	require.NoError(t, err)
	assert.Same(t, postgres.Pgx, d)
}

func TestBuiltins_OutsideCall(t *testing.T) {
	thread := &starlark.Thread{Name: "test"}
	_, err := starlark.Call(thread, builtins["now"], nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only available while a macro runs")

	v, err := starlark.Call(thread, builtins["quote"], starlark.Tuple{starlark.String("a'b")}, nil)
	require.NoError(t, err)
	assert.Equal(t, starlark.String("'a''b'"), v)
}

func TestThreadPool(t *testing.T) {
	p := newThreadPool(1)
	a := p.get("a")
	b := p.get("b")
	assert.NotSame(t, a, b)
	assert.Equal(t, "b", b.Name)

	p.put(a)
	p.put(b)
	assert.Equal(t, 1, p.size())

	c := p.get("c")
	assert.Same(t, a, c)
	assert.Equal(t, "c", c.Name)
	assert.Nil(t, c.Local(callKey))
}
