package sqlite

import (
	"testing"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacros(t *testing.T) {
	got, err := Macros.Call("table", macro.Args{"schema": "cerebrum", "name": "foo"}, macro.Context{})
	require.NoError(t, err)
	assert.Equal(t, "foo", got)

	got, err = Macros.Call("now", nil, macro.Context{})
	require.NoError(t, err)
	assert.Equal(t, "datetime('now')", got)

	got, err = Macros.Call("from_dual", nil, macro.Context{})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Macros.Call("sequence", macro.Args{"name": "s", "op": "next"}, macro.Context{})
	assert.ErrorIs(t, err, dberr.ErrNotSupported)
}

func TestRegistered(t *testing.T) {
	d, ok := dialect.Get("sqlite")
	require.True(t, ok)
	assert.Equal(t, params.Qmark, d.Style())
}
