// Package config provides configuration management for the portsql CLI.
//
// The shared target type lives in internal/config and is re-exported here
// via a type alias for convenience.
package config

import (
	"fmt"
	"strings"

	sharedcfg "github.com/leapstack-labs/portsql/internal/config"
	"github.com/leapstack-labs/portsql/pkg/params"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = sharedcfg.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	Target  *TargetConfig            `koanf:"target"`
	Targets map[string]*TargetConfig `koanf:"targets"` // named overrides selected with --target

	Dialect    string `koanf:"dialect"`     // overrides the target's dialect
	ParamStyle string `koanf:"param_style"` // overrides the dialect's paramstyle
	CacheSize  int    `koanf:"cache_size"`

	ConstantsFile string `koanf:"constants_file"`
	MacrosDir     string `koanf:"macros_dir"`
	StatePath     string `koanf:"state_path"`

	LogLevel     string `koanf:"log_level"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// Settings backs [:get_config]. Filled from the settings section.
	Settings *Settings `koanf:"-"`

	ProjectRoot string `koanf:"-"`
}

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputPlain = "plain"
)

// Default configuration values - uses shared defaults from internal/config.
const (
	DefaultMacrosDir = sharedcfg.DefaultMacrosDir
	DefaultStateFile = sharedcfg.DefaultStateFile
	DefaultCacheSize = 100
	DefaultLogLevel  = "warn"
	DefaultOutput    = OutputTable
)

// Validate checks the settings that are not covered by the target.
func (c *Config) Validate() error {
	if c.ParamStyle != "" {
		if _, err := params.ParseStyle(c.ParamStyle); err != nil {
			return fmt.Errorf("invalid param_style: %w", err)
		}
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	switch strings.ToLower(c.OutputFormat) {
	case "", OutputTable, OutputJSON, OutputPlain:
	default:
		return fmt.Errorf("invalid output format %q (want table, json or plain)", c.OutputFormat)
	}
	return nil
}
