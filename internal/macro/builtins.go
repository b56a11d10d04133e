package macro

import (
	"fmt"

	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"go.starlark.net/starlark"
)

// callKey is the thread-local key holding the call in progress.
const callKey = "portsql.call"

// call is what a running macro can see of its invocation.
type call struct {
	dialect *dialect.Dialect
	mc      macro.Context
}

// builtins are predeclared in every macro file.
var builtins = starlark.StringDict{
	"quote":    starlark.NewBuiltin("quote", quote),
	"dialect":  starlark.NewBuiltin("dialect", dialectName),
	"now":      starlark.NewBuiltin("now", now),
	"config":   starlark.NewBuiltin("config", config),
	"constant": starlark.NewBuiltin("constant", constant),
}

func currentCall(thread *starlark.Thread, b *starlark.Builtin) (*call, error) {
	c, ok := thread.Local(callKey).(*call)
	if !ok || c == nil {
		return nil, fmt.Errorf("%s: only available while a macro runs", b.Name())
	}
	return c, nil
}

// quote(s) returns s as a SQL string literal.
func quote(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	return starlark.String(macro.QuoteString(s)), nil
}

// dialect() returns the name of the dialect being translated to.
func dialectName(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	c, err := currentCall(thread, b)
	if err != nil {
		return nil, err
	}
	return starlark.String(c.dialect.Name), nil
}

// now() returns the dialect's current-timestamp expression.
func now(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	c, err := currentCall(thread, b)
	if err != nil {
		return nil, err
	}
	s, err := c.dialect.Macros().Call("now", macro.Args{}, c.mc)
	if err != nil {
		return nil, err
	}
	return starlark.String(s), nil
}

// config(name) returns a setting as a quoted SQL literal, like [:get_config].
func config(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	c, err := currentCall(thread, b)
	if err != nil {
		return nil, err
	}
	s, err := macro.GetConfig(macro.ConfigArgs{Var: name}, c.mc)
	if err != nil {
		return nil, err
	}
	return starlark.String(s), nil
}

// constant(name) returns the integer code of a domain constant.
func constant(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	c, err := currentCall(thread, b)
	if err != nil {
		return nil, err
	}
	s, err := macro.GetConstant(macro.ConstantArgs{Name: name}, c.mc)
	if err != nil {
		return nil, err
	}
	var n int
	if _, err := fmt.Sscan(s, &n); err != nil {
		return nil, err
	}
	return starlark.MakeInt(n), nil
}
