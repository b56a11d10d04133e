package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalar(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"7", int64(7)},
		{"-3", int64(-3)},
		{"2.5", 2.5},
		{"true", true},
		{"FALSE", false},
		{"null", nil},
		{"alice", "alice"},
		{"'007'", "007"},
		{"''", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseScalar(tt.raw))
		})
	}
}

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"id=7", ":name=bob", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(7), "name": "bob", "note": "a=b"}, got)

	for _, bad := range []string{"novalue", "=1", ":=1"} {
		_, err := parseParams([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParamSets(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
		return path
	}

	t.Run("flags only", func(t *testing.T) {
		sets, err := paramSets("", []string{"a=1"})
		require.NoError(t, err)
		assert.Equal(t, []map[string]any{{"a": int64(1)}}, sets)
	})

	t.Run("mapping", func(t *testing.T) {
		path := write("one.yaml", "a: 1\nb: x\n")
		sets, err := paramSets(path, []string{"b=y"})
		require.NoError(t, err)
		require.Len(t, sets, 1)
		assert.Equal(t, 1, sets[0]["a"])
		assert.Equal(t, "y", sets[0]["b"], "flags override the file")
	})

	t.Run("list", func(t *testing.T) {
		path := write("many.yaml", "- {a: 1}\n- {a: 2}\n-\n")
		sets, err := paramSets(path, []string{"run=5"})
		require.NoError(t, err)
		require.Len(t, sets, 3)
		for _, set := range sets {
			assert.Equal(t, int64(5), set["run"])
		}
		assert.Equal(t, 2, sets[1]["a"])
	})

	t.Run("empty file", func(t *testing.T) {
		path := write("empty.yaml", "")
		sets, err := paramSets(path, nil)
		require.NoError(t, err)
		assert.Len(t, sets, 1)
	})

	t.Run("scalar document", func(t *testing.T) {
		path := write("scalar.yaml", "42\n")
		_, err := paramSets(path, nil)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := paramSets(filepath.Join(dir, "nope.yaml"), nil)
		assert.Error(t, err)
	})
}
