package mysql

import (
	"testing"

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
		{"table", macro.Args{"schema": "cerebrum", "name": "foo"}, "foo"},
		{"now", nil, "CURRENT_TIMESTAMP"},
		{"sequence", macro.Args{"name": "s", "op": "next"}, "NEXT VALUE FOR s"},
		{"sequence", macro.Args{"name": "s", "op": "curr"}, "PREVIOUS VALUE FOR s"},
		{"sequence", macro.Args{"name": "s", "op": "set", "val": "3"}, "SETVAL(s, 3)"},
		{"sequence_start", macro.Args{"value": "5"}, "START WITH 5"},
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

func TestRegistered(t *testing.T) {
	d, ok := dialect.Get("mysql")
	require.True(t, ok)
	assert.Equal(t, params.Qmark, d.Style())
}
