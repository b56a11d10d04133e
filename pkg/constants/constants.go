// Package constants resolves named domain constants to their integer codes.
//
// Constants are kept in a YAML file:
//
//	constants:
//	  - name: entity_account
//	    code: 17
//	    description: Account entity type
//	  - name: spread_ldap_group
//	    code: "42"
//
// Codes may be written as integers or numeric strings.
package constants

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownConstant is returned for a name that is not in the table.
var ErrUnknownConstant = errors.New("unknown constant")

// Code is a resolved domain constant. It binds as its integer value.
type Code struct {
	Name        string
	Value       int
	Description string
}

// IntCode returns the integer value of the constant.
func (c Code) IntCode() int { return c.Value }

func (c Code) String() string { return c.Name }

type entry struct {
	Name        string `yaml:"name"`
	Code        any    `yaml:"code"`
	Description string `yaml:"description"`
}

type document struct {
	Constants []entry `yaml:"constants"`
}

// Table is a read-only set of constants.
type Table struct {
	values map[string]any
	descs  map[string]string
}

// New returns a table holding the given codes.
func New(codes ...Code) *Table {
	t := &Table{values: make(map[string]any, len(codes)), descs: make(map[string]string, len(codes))}
	for _, c := range codes {
		t.values[c.Name] = c.Value
		t.descs[c.Name] = c.Description
	}
	return t
}

// Load reads a constants file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read constants file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a constants document. Unknown fields, duplicate and empty
// names are errors. Codes are not converted until they are looked up.
func Parse(data []byte) (*Table, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid constants YAML: %w", err)
	}

	t := &Table{values: make(map[string]any, len(doc.Constants)), descs: make(map[string]string, len(doc.Constants))}
	for i, e := range doc.Constants {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("constant #%d has no name", i+1)
		}
		if _, dup := t.values[name]; dup {
			return nil, fmt.Errorf("constant %q defined more than once", name)
		}
		t.values[name] = e.Code
		t.descs[name] = e.Description
	}
	return t, nil
}

// Lookup returns the raw code of name.
func (t *Table) Lookup(name string) (any, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.values[name]
	return v, ok
}

// Code resolves name to its integer code.
func (t *Table) Code(name string) (Code, error) {
	v, ok := t.values[name]
	if !ok {
		return Code{}, fmt.Errorf("%w: %q", ErrUnknownConstant, name)
	}
	n, err := ToInt(v)
	if err != nil {
		return Code{}, fmt.Errorf("constant %q: %w", name, err)
	}
	return Code{Name: name, Value: n, Description: t.descs[name]}, nil
}

// Names returns the constant names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.values))
	for name := range t.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of constants.
func (t *Table) Len() int { return len(t.values) }

// ToInt converts a constant value to int. It accepts integer types,
// integral floats, numeric strings and values with an IntCode method.
func ToInt(v any) (int, error) {
	switch x := v.(type) {
	case interface{ IntCode() int }:
		return x.IntCode(), nil
	case int:
		return x, nil
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint8:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int", x)
		}
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("value %v is not an integer", x)
		}
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", x)
		}
		return n, nil
	case nil:
		return 0, errors.New("no value")
	default:
		return 0, fmt.Errorf("value of type %T is not an integer", v)
	}
}
