package oracle

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
	tests := []struct {
		op   string
		args macro.Args
		want string
	}{
		{"table", macro.Args{"schema": "cerebrum", "name": "foo"}, "cerebrum.foo"},
		{"table", macro.Args{"name": "foo"}, "foo"},
		{"now", nil, "SYSDATE"},
		{"sequence", macro.Args{"schema": "cerebrum", "name": "s", "op": "next"}, "cerebrum.s.nextval"},
		{"sequence", macro.Args{"schema": "cerebrum", "name": "s", "op": "curr"}, "cerebrum.s.currval"},
		{"sequence_start", macro.Args{"value": "7"}, "START WITH 7"},
		{"from_dual", nil, "FROM DUAL"},
	}

	for _, tt := range tests {
		t.Run(tt.op+"/"+tt.want, func(t *testing.T) {
			got, err := Macros.Call(tt.op, tt.args, macro.Context{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetNotSupported(t *testing.T) {
	_, err := Macros.Call("sequence", macro.Args{"name": "s", "op": "set", "val": "1"}, macro.Context{})
	require.Error(t, err)
	assert.ErrorIs(t, err, dberr.ErrNotSupported)
	assert.ErrorIs(t, err, dberr.ErrDatabase)
}

func TestRegistered(t *testing.T) {
	d, ok := dialect.Get("oracle")
	require.True(t, ok)
	assert.Equal(t, params.Numeric, d.Style())
}
