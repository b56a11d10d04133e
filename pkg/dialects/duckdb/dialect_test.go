package duckdb

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
	got, err := Macros.Call("sequence", macro.Args{"name": "s", "op": "next"}, macro.Context{})
	require.NoError(t, err)
	assert.Equal(t, "nextval('s')", got)

	got, err = Macros.Call("now", nil, macro.Context{})
	require.NoError(t, err)
	assert.Equal(t, "CURRENT_TIMESTAMP", got)

	_, err = Macros.Call("sequence", macro.Args{"name": "s", "op": "set", "val": "1"}, macro.Context{})
	assert.ErrorIs(t, err, dberr.ErrNotSupported)
}

func TestRegistered(t *testing.T) {
	d, ok := dialect.Get("duckdb")
	require.True(t, ok)
	assert.Equal(t, params.Dollar, d.Style())
}
