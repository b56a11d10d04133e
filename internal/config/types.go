// Package config provides the target configuration shared by the portsql
// CLI and anything else that needs to open a configured database.
package config

import (
	"fmt"
	"maps"
	"strings"

	"github.com/leapstack-labs/portsql/pkg/adapter"
)

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // sqlite, duckdb, postgres, mysql

	// File-based databases (SQLite, DuckDB)
	Database string `koanf:"database"` // file path or database name

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g. DuckDB extensions)
	Params map[string]any `koanf:"params"`
}

// IsFileBased reports whether Database names a file rather than a database
// on a server.
func (t *TargetConfig) IsFileBased() bool {
	switch strings.ToLower(t.Type) {
	case "sqlite", "duckdb":
		return true
	default:
		return false
	}
}

// AdapterConfig converts the target into the config an adapter connects
// with.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	cfg := adapter.Config{
		Type:     strings.ToLower(t.Type),
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  maps.Clone(t.Options),
		Params:   maps.Clone(t.Params),
	}
	if t.IsFileBased() {
		cfg.Path = t.Database
	}
	return cfg
}

// Validate checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	if !t.IsFileBased() && t.Database == "" {
		return fmt.Errorf("target %s requires a database name", t.Type)
	}
	return nil
}

// String describes the target without credentials.
func (t *TargetConfig) String() string {
	if t.IsFileBased() {
		db := t.Database
		if db == "" {
			db = ":memory:"
		}
		return fmt.Sprintf("%s:%s", t.Type, db)
	}
	return fmt.Sprintf("%s://%s@%s:%d/%s", t.Type, t.User, t.Host, t.Port, t.Database)
}
