package config

import "maps"

// Default configuration values.
const (
	ConfigFileName    = "portsql.yaml"
	ConfigFileNameAlt = "portsql.yml"

	DefaultMacrosDir = "macros"
	DefaultStateFile = ".portsql/state.db"
	DefaultType      = "sqlite"
)

// defaultPorts holds the listening port of each network backend.
var defaultPorts = map[string]int{
	"postgres": 5432,
	"mysql":    3306,
}

// DefaultPortForType returns the usual port for a database type, or 0 for
// file-based backends.
func DefaultPortForType(dbType string) int {
	return defaultPorts[dbType]
}

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	switch dbType {
	case "postgres":
		return "public"
	case "sqlite", "duckdb":
		return "main"
	default:
		return ""
	}
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Type == "" {
		t.Type = DefaultType
	}
	if t.Port == 0 {
		t.Port = DefaultPortForType(t.Type)
	}
	if t.Host == "" && !t.IsFileBased() {
		t.Host = "localhost"
	}
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
}

// MergeTargetConfig merges two target configs, with override taking precedence.
func MergeTargetConfig(base, override *TargetConfig) *TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	merged.Options = make(map[string]string, len(base.Options)+len(override.Options))
	merged.Params = make(map[string]any, len(base.Params)+len(override.Params))
	maps.Copy(merged.Options, base.Options)
	maps.Copy(merged.Params, base.Params)

	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Schema != "" {
		merged.Schema = override.Schema
	}
	maps.Copy(merged.Options, override.Options)
	maps.Copy(merged.Params, override.Params)

	return &merged
}
