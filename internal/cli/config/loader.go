package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	sharedcfg "github.com/leapstack-labs/portsql/internal/config"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

const envPrefix = "PORTSQL_"

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// flagKeys maps flag names to config keys where the two differ.
var flagKeys = map[string]string{
	"state":     "state_path",
	"constants": "constants_file",
	"database":  "target.database",
	"type":      "target.type",
}

// skipFlags select how configuration is loaded, or are loaded separately,
// and are not config keys.
var skipFlags = map[string]bool{
	"config":  true,
	"target":  true,
	"setting": true,
}

// configExistsIn returns the portsql config file in dir, or "".
func configExistsIn(dir string) string {
	for _, name := range []string{sharedcfg.ConfigFileName, sharedcfg.ConfigFileNameAlt} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for a portsql config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if configExistsIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// loadSettingFlag merges --setting key=value pairs under settings. Each pair
// becomes its own key, so flag values sit beside the config file's rather
// than replacing the whole map.
func loadSettingFlag(flags *pflag.FlagSet) error {
	f := flags.Lookup("setting")
	if f == nil || !f.Changed {
		return nil
	}
	pairs, err := flags.GetStringToString("setting")
	if err != nil {
		return fmt.Errorf("invalid --setting: %w", err)
	}
	values := make(map[string]any, len(pairs))
	for key, v := range pairs {
		values["settings."+key] = v
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("failed to load settings flags: %w", err)
	}
	return nil
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithTarget(cfgFile, "", flags)
}

// LoadConfigWithTarget loads configuration and merges the named entry of
// targets over the base target. An unknown target name is an error.
func LoadConfigWithTarget(cfgFile string, targetName string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	projectRoot := cwd
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	} else if root := findProjectRootUpward(cwd); root != "" {
		projectRoot = root
		cfgFile = configExistsIn(root)
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"macros_dir": DefaultMacrosDir,
		"state_path": DefaultStateFile,
		"cache_size": DefaultCacheSize,
		"log_level":  DefaultLogLevel,
		"output":     DefaultOutput,
		"verbose":    false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment (PORTSQL_ prefix)
	// PORTSQL_CACHE_SIZE -> cache_size, PORTSQL_TARGET_PASSWORD -> target.password
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	var flagPaths map[string]bool
	if flags != nil {
		flagPaths = make(map[string]bool)
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || skipFlags[f.Name] {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[f.Name]; ok {
				key = mapped
			}
			flagPaths[key] = true
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
		if err := loadSettingFlag(flags); err != nil {
			return nil, err
		}
	}

	// 5. Unmarshal
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot
	cfg.Settings = &Settings{k: k.Cut("settings")}

	// Paths given as flags are relative to the working directory, the rest
	// to the project root.
	resolve := func(key, path string) string {
		if flagPaths[key] {
			return resolvePathRelativeTo(path, cwd)
		}
		return resolvePathRelativeTo(path, projectRoot)
	}
	cfg.MacrosDir = resolve("macros_dir", cfg.MacrosDir)
	cfg.ConstantsFile = resolve("constants_file", cfg.ConstantsFile)
	if cfg.StatePath != ":memory:" {
		cfg.StatePath = resolve("state_path", cfg.StatePath)
	}

	if targetName != "" {
		override, ok := cfg.Targets[targetName]
		if !ok {
			return nil, fmt.Errorf("unknown target %q (defined: %s)", targetName, strings.Join(targetNames(cfg.Targets), ", "))
		}
		cfg.Target = sharedcfg.MergeTargetConfig(cfg.Target, override)
	}
	if cfg.Target == nil {
		cfg.Target = &TargetConfig{}
	}
	sharedcfg.ApplyTargetDefaults(cfg.Target)
	expandTargetEnvVars(cfg.Target)

	if cfg.Target.IsFileBased() && cfg.Target.Database != "" && cfg.Target.Database != ":memory:" {
		cfg.Target.Database = resolve("target.database", cfg.Target.Database)
	}

	if err := cfg.Target.Validate(); err != nil {
		return nil, fmt.Errorf("invalid target configuration in %s: %w", configName(), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// envKey maps an environment variable to a config key. Variables for the
// target and settings sections address a key inside that section.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range []string{"target_", "settings_"} {
		if rest, ok := strings.CutPrefix(key, section); ok && rest != "" {
			return strings.TrimSuffix(section, "_") + "." + rest
		}
	}
	return key
}

func targetNames(targets map[string]*TargetConfig) []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	if len(names) == 0 {
		return []string{"none"}
	}
	sort.Strings(names)
	return names
}

func configName() string {
	if configFileUsed == "" {
		return sharedcfg.ConfigFileName
	}
	return filepath.Base(configFileUsed)
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig or LoadConfigWithTarget is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// NewLogger builds the CLI logger: text on w at the configured level, or
// debug when verbose.
func NewLogger(cfg *Config, w io.Writer) (*slog.Logger, error) {
	level := slog.LevelWarn
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
		}
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
}
