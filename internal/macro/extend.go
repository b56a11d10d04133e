package macro

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"go.starlark.net/starlark"
)

// Register adds one operation per exported function of modules to b. The
// functions run on behalf of d. A name that b already has is an error.
func Register(b *macro.Builder, d *dialect.Dialect, modules []*Module) error {
	pool := newThreadPool(0)
	for _, m := range modules {
		for _, fn := range m.Names() {
			name := m.OpName(fn)
			if b.Has(name) {
				return fmt.Errorf("macro %s (%s) conflicts with an existing operation", name, m.Path)
			}
			b.Register(name, handler(pool, d, name, m.Functions[fn]))
		}
	}
	return nil
}

// Extend returns a copy of d whose macro table also holds the operations of
// modules.
func Extend(d *dialect.Dialect, modules []*Module) (*dialect.Dialect, error) {
	if len(modules) == 0 {
		return d, nil
	}
	b := macro.From(d.Macros())
	if err := Register(b, d, modules); err != nil {
		return nil, err
	}
	return dialect.From(d, d.Name).Macros(b.Build()).Build(), nil
}

func handler(pool *threadPool, d *dialect.Dialect, name string, fn starlark.Callable) macro.Handler {
	return func(args macro.Args, mc macro.Context) (string, error) {
		keys := make([]string, 0, len(args))
		for k := range args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		kwargs := make([]starlark.Tuple, 0, len(keys))
		for _, k := range keys {
			kwargs = append(kwargs, starlark.Tuple{starlark.String(k), starlark.String(args[k])})
		}

		thread := pool.get(name)
		defer pool.put(thread)
		thread.SetLocal(callKey, &call{dialect: d, mc: mc})

		v, err := starlark.Call(thread, fn, nil, kwargs)
		if err != nil {
			return "", err
		}
		s, ok := starlark.AsString(v)
		if !ok {
			return "", dberr.Errorf(dberr.KindProgramming, "returned %s, want string", v.Type())
		}
		return s, nil
	}
}
