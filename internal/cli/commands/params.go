package commands

import (
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseParams turns repeated --param name=value flags into bind values.
// Values are typed the way YAML types a bare scalar: integers, floats,
// booleans and null are recognised, everything else is a string. Quote a
// value ('007') to keep it a string.
func parseParams(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q (want name=value)", pair)
		}
		values[name] = parseScalar(raw)
	}
	return values, nil
}

func parseScalar(raw string) any {
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return raw[1 : len(raw)-1]
	}
	switch strings.ToLower(raw) {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// loadParamSets reads a YAML file holding either one mapping of bind values
// or a list of them.
func loadParamSets(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path is intended
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("invalid params file %s: %w", path, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	switch node.Content[0].Kind {
	case yaml.MappingNode:
		var set map[string]any
		if err := node.Content[0].Decode(&set); err != nil {
			return nil, fmt.Errorf("invalid params file %s: %w", path, err)
		}
		return []map[string]any{set}, nil
	case yaml.SequenceNode:
		var sets []map[string]any
		if err := node.Content[0].Decode(&sets); err != nil {
			return nil, fmt.Errorf("invalid params file %s: %w", path, err)
		}
		return sets, nil
	default:
		return nil, fmt.Errorf("invalid params file %s: want a mapping or a list of mappings", path)
	}
}

// paramSets combines the params file and --param flags. Flags apply to
// every set.
func paramSets(file string, pairs []string) ([]map[string]any, error) {
	flagValues, err := parseParams(pairs)
	if err != nil {
		return nil, err
	}
	if file == "" {
		return []map[string]any{flagValues}, nil
	}
	sets, err := loadParamSets(file)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return []map[string]any{flagValues}, nil
	}
	for i := range sets {
		if sets[i] == nil {
			sets[i] = make(map[string]any, len(flagValues))
		}
		maps.Copy(sets[i], flagValues)
	}
	return sets, nil
}
