package postgres

import (
	"testing"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	d, ok := dialect.Get("postgres")
	require.True(t, ok)
	assert.Equal(t, params.Named, d.Style())

	d, ok = dialect.Get("pgx")
	require.True(t, ok)
	assert.Equal(t, params.Dollar, d.Style())
	assert.Same(t, Macros, d.Macros())
}

func TestMacros(t *testing.T) {
	tests := []struct {
		op   string
		args macro.Args
		want string
	}{
		{"table", macro.Args{"schema": "cerebrum", "name": "foo"}, "foo"},
		{"now", nil, "NOW()"},
		{"sequence", macro.Args{"schema": "cerebrum", "name": "entity_id_seq", "op": "next"}, "nextval('entity_id_seq')"},
		{"sequence", macro.Args{"name": "entity_id_seq", "op": "current"}, "currval('entity_id_seq')"},
		{"sequence", macro.Args{"name": "entity_id_seq", "op": "set", "val": "10"}, "setval('entity_id_seq', 10)"},
		{"sequence_start", macro.Args{"value": "1000"}, "START 1000"},
		{"from_dual", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.op+"/"+tt.want, func(t *testing.T) {
			got, err := Macros.Call(tt.op, tt.args, macro.Context{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMacros_BadSequenceOp(t *testing.T) {
	_, err := Macros.Call("sequence", macro.Args{"name": "s", "op": "previous"}, macro.Context{})
	assert.ErrorIs(t, err, dberr.ErrProgramming)
}
