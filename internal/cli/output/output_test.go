package output

import (
	"bytes"
	"testing"

	"github.com/leapstack-labs/portsql/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeTable, false},
		{"table", ModeTable, false},
		{"JSON", ModeJSON, false},
		{"plain", ModePlain, false},
		{"markdown", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeTable)
	r.Table([]string{"id", "name"}, [][]any{{int64(1), "alice"}, {int64(2), nil}})

	s := out.String()
	assert.Contains(t, s, "│ id │ name")
	assert.NotContains(t, s, "ID")
	assert.Contains(t, s, "alice")
	assert.Contains(t, s, "NULL")
	assert.Contains(t, s, "┌")
}

func TestRenderer_TablePlain(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModePlain)
	r.Table([]string{"id", "name"}, [][]any{{int64(1), []byte("alice")}, {int64(2), nil}})

	assert.Equal(t, "1\talice\n2\tNULL\n", out.String())
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeJSON)
	require.NoError(t, r.JSON(map[string]any{"sql": "SELECT 1"}))
	assert.JSONEq(t, `{"sql": "SELECT 1"}`, out.String())
}

func TestRenderer_Diagnostics(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, "")
	assert.Equal(t, ModeTable, r.Mode())

	r.Errorf("bad %s", "thing")
	r.Warnf("careful")
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error: bad thing")
	assert.Contains(t, errOut.String(), "careful")
}

func TestStyles_ForToken(t *testing.T) {
	s := DefaultStyles()
	assert.Equal(t, s.Bind, s.ForToken(token.BindParameter))
	assert.Equal(t, s.Macro, s.ForToken(token.PortabilityArg))
	assert.Equal(t, s.Literal, s.ForToken(token.StringLiteral))
	assert.Equal(t, s.Muted, s.ForToken(token.SpecialChar))
}
