// Package macro loads site-specific portability macros written in Starlark.
//
// Every .star file in the macros directory is a namespace named after the
// file. Each exported function becomes the macro operation
// <namespace>_<function>, called with the invocation's key=value pairs as
// keyword arguments, all strings. It must return a string.
//
//	# macros/audit.star
//	def stamp(col="updated_at"):
//	    """Sets an audit column to the current time."""
//	    return col + " = " + now()
//
// is invoked as [:audit_stamp col=modified].
package macro

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.starlark.net/starlark"
)

// Loader scans a directory for .star files and loads them as Starlark modules.
type Loader struct {
	dir string
}

// NewLoader creates a new macro loader for the specified directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Module is a loaded macro file.
type Module struct {
	// Namespace is derived from filename (e.g., "audit" from "audit.star")
	Namespace string

	// Path is the path to the .star file
	Path string

	// Functions holds the exported functions (names not starting with _)
	Functions map[string]starlark.Callable

	// Docs describes the exported functions, in source order
	Docs []*FunctionDoc
}

// OpName returns the macro operation name of function fn.
func (m *Module) OpName(fn string) string {
	return m.Namespace + "_" + fn
}

// Names returns the exported function names, sorted.
func (m *Module) Names() []string {
	names := make([]string, 0, len(m.Functions))
	for name := range m.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load scans the macro directory and loads all .star files in name order.
// A missing directory yields no modules.
func (l *Loader) Load() ([]*Module, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access macros directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("macros path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan macros directory: %w", err)
	}
	sort.Strings(files)

	modules := make([]*Module, 0, len(files))
	for _, file := range files {
		m, err := loadFile(file)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// loadFile executes one .star file and collects its exported functions.
func loadFile(path string) (*Module, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path comes from a glob of the macros directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	namespace := strings.TrimSuffix(filepath.Base(path), ".star")
	if err := validateNamespace(namespace); err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	docs, err := parseDocs(path, content)
	if err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	thread := &starlark.Thread{
		Name:  "load:" + namespace,
		Print: func(_ *starlark.Thread, _ string) {},
	}
	globals, err := starlark.ExecFile(thread, path, content, builtins) //nolint:staticcheck // SA1019: ExecFileOptions needs explicit syntax options
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}
	globals.Freeze()

	m := &Module{
		Namespace: namespace,
		Path:      path,
		Functions: make(map[string]starlark.Callable),
	}
	for name, value := range globals {
		if strings.HasPrefix(name, "_") {
			continue
		}
		if fn, ok := value.(starlark.Callable); ok {
			m.Functions[name] = fn
		}
	}
	for _, d := range docs {
		if _, ok := m.Functions[d.Name]; ok {
			m.Docs = append(m.Docs, d)
		}
	}
	return m, nil
}

// validateNamespace checks if a namespace name is valid.
func validateNamespace(name string) error {
	if name == "" {
		return fmt.Errorf("namespace cannot be empty")
	}
	for i, r := range name {
		switch {
		case isLetter(r) || r == '_':
		case isDigit(r) && i > 0:
		case i == 0:
			return fmt.Errorf("namespace must start with letter or underscore: %s", name)
		default:
			return fmt.Errorf("namespace contains invalid character: %s", name)
		}
	}
	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// LoadError represents an error loading a macro file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("macros/%s: %s", filepath.Base(e.File), e.Message)
}
