package macro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMacros(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "macros")
	require.NoError(t, os.Mkdir(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoader_Load(t *testing.T) {
	tests := []struct {
		name           string
		setupDir       func(t *testing.T) string
		wantNil        bool
		wantErr        bool
		wantNamespaces []string
		wantFunctions  map[string][]string
	}{
		{
			name:     "empty directory",
			setupDir: func(t *testing.T) string { return writeMacros(t, nil) },
		},
		{
			name:     "non-existent directory",
			setupDir: func(_ *testing.T) string { return "/nonexistent/path/to/macros" },
			wantNil:  true,
		},
		{
			name: "not a directory",
			setupDir: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "macros")
				require.NoError(t, os.WriteFile(path, []byte("not a dir"), 0o644))
				return path
			},
			wantErr: true,
		},
		{
			name: "functions and private names",
			setupDir: func(t *testing.T) string {
				return writeMacros(t, map[string]string{
					"utils.star": `
def greet(name):
    return "Hello, " + name

def add(a, b):
    return a + b

_private = "hidden"
answer = 42

def _helper():
    return ""
`,
					"readme.txt": "ignored",
				})
			},
			wantNamespaces: []string{"utils"},
			wantFunctions:  map[string][]string{"utils": {"add", "greet"}},
		},
		{
			name: "several files in name order",
			setupDir: func(t *testing.T) string {
				return writeMacros(t, map[string]string{
					"b.star": "def f():\n    return ''\n",
					"a.star": "def g():\n    return ''\n",
				})
			},
			wantNamespaces: []string{"a", "b"},
		},
		{
			name: "syntax error",
			setupDir: func(t *testing.T) string {
				return writeMacros(t, map[string]string{"bad.star": "def broken(\n"})
			},
			wantErr: true,
		},
		{
			name: "invalid namespace",
			setupDir: func(t *testing.T) string {
				return writeMacros(t, map[string]string{"my-macros.star": "x = 1\n"})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modules, err := NewLoader(tt.setupDir(t)).Load()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, modules)
				return
			}

			var namespaces []string
			for _, m := range modules {
				namespaces = append(namespaces, m.Namespace)
				if want, ok := tt.wantFunctions[m.Namespace]; ok {
					assert.Equal(t, want, m.Names())
				}
			}
			assert.Equal(t, tt.wantNamespaces, namespaces)
		})
	}
}

func TestLoader_LoadError(t *testing.T) {
	dir := writeMacros(t, map[string]string{"bad.star": "x = undefined_name\n"})

	_, err := NewLoader(dir).Load()
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "bad.star", filepath.Base(loadErr.File))
	assert.Contains(t, err.Error(), "macros/bad.star")
}

func TestLoader_Docs(t *testing.T) {
	dir := writeMacros(t, map[string]string{"audit.star": `
def stamp(col="updated_at", *rest, **extra):
    """Sets an audit column to the current time."""
    return col + " = " + now()

def plain(x, n=-1):
    return x

def _hidden():
    """Not listed."""
    return ""
`})

	modules, err := NewLoader(dir).Load()
	require.NoError(t, err)
	require.Len(t, modules, 1)

	docs := modules[0].Docs
	require.Len(t, docs, 2)
	assert.Equal(t, "stamp", docs[0].Name)
	assert.Equal(t, `stamp(col="updated_at", *rest, **extra)`, docs[0].Signature())
	assert.Equal(t, "Sets an audit column to the current time.", docs[0].Docstring)
	assert.Equal(t, 2, docs[0].Line)
	assert.Equal(t, "plain(x, n=-1)", docs[1].Signature())
	assert.Empty(t, docs[1].Docstring)
	assert.Equal(t, "audit_stamp", modules[0].OpName("stamp"))
}

func TestValidateNamespace(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"utils", false},
		{"_private", false},
		{"v2", false},
		{"", true},
		{"2fast", true},
		{"my-macros", true},
		{"dotted.name", true},
	}
	for _, tt := range tests {
		err := validateNamespace(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
		} else {
			assert.NoError(t, err, tt.name)
		}
	}
}
