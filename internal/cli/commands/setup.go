package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/portsql/internal/cli/config"
	"github.com/leapstack-labs/portsql/internal/cli/output"
	sitemacro "github.com/leapstack-labs/portsql/internal/macro"
	"github.com/leapstack-labs/portsql/internal/state"
	"github.com/leapstack-labs/portsql/pkg/adapter"
	"github.com/leapstack-labs/portsql/pkg/constants"
	"github.com/leapstack-labs/portsql/pkg/db"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/params"
	"github.com/leapstack-labs/portsql/pkg/translate"
	"github.com/spf13/cobra"

	// Registered adapters and dialects.
	_ "github.com/leapstack-labs/portsql/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/portsql/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/portsql/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/portsql/pkg/adapters/sqlite"
	_ "github.com/leapstack-labs/portsql/pkg/dialects/oracle"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer

	modules []*sitemacro.Module
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		mode = output.ModeTable
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}
}

// getConfig returns the current configuration, or the defaults when none
// was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Target:       &config.TargetConfig{Type: "sqlite", Schema: "main"},
		MacrosDir:    config.DefaultMacrosDir,
		StatePath:    config.DefaultStateFile,
		CacheSize:    config.DefaultCacheSize,
		OutputFormat: config.DefaultOutput,
	}
}

// SiteMacros loads the Starlark macro modules of the project once.
func (c *CommandContext) SiteMacros() ([]*sitemacro.Module, error) {
	if c.modules != nil || c.Cfg.MacrosDir == "" {
		return c.modules, nil
	}
	modules, err := sitemacro.NewLoader(c.Cfg.MacrosDir).Load()
	if err != nil {
		return nil, err
	}
	c.modules = modules
	return modules, nil
}

// Dialect resolves the dialect statements are translated to: the named
// dialect if one is given, otherwise the target adapter's. Site macros and
// a configured paramstyle are applied on top.
func (c *CommandContext) Dialect(name string) (*dialect.Dialect, error) {
	if name == "" {
		name = c.Cfg.Dialect
	}

	var base *dialect.Dialect
	if name != "" {
		d, err := dialect.Lookup(name)
		if err != nil {
			return nil, err
		}
		base = d
	} else {
		a, err := adapter.NewAdapter(c.Cfg.Target.AdapterConfig(), c.Logger)
		if err != nil {
			return nil, err
		}
		base = a.Dialect()
	}

	modules, err := c.SiteMacros()
	if err != nil {
		return nil, err
	}
	d, err := sitemacro.Extend(base, modules)
	if err != nil {
		return nil, err
	}

	if c.Cfg.ParamStyle != "" {
		style, err := params.ParseStyle(c.Cfg.ParamStyle)
		if err != nil {
			return nil, err
		}
		d = d.WithStyle(style)
	}
	return d, nil
}

// MacroContext builds the context handed to macro handlers. Constants come
// from the configured constants file, or else from the state database when
// a statement first needs one.
func (c *CommandContext) MacroContext(ctx context.Context) (macro.Context, error) {
	mc := macro.Context{Logger: c.Logger}
	if c.Cfg.Settings != nil {
		mc.Config = c.Cfg.Settings
	}
	if c.Cfg.ConstantsFile != "" {
		t, err := constants.Load(c.Cfg.ConstantsFile)
		if err != nil {
			return macro.Context{}, err
		}
		mc.Constants = t
		return mc, nil
	}
	mc.NewConstants = func() (macro.ConstantResolver, error) {
		if _, err := os.Stat(c.Cfg.StatePath); err != nil {
			return nil, fmt.Errorf("no constants file configured and no state database at %s", c.Cfg.StatePath)
		}
		store, err := c.OpenState(ctx)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		return store.Constants(ctx)
	}
	return mc, nil
}

// Translator returns a translator for the named dialect (or the target's).
func (c *CommandContext) Translator(ctx context.Context, dialectName string) (*translate.Translator, error) {
	d, err := c.Dialect(dialectName)
	if err != nil {
		return nil, err
	}
	mc, err := c.MacroContext(ctx)
	if err != nil {
		return nil, err
	}
	return translate.New(d,
		translate.WithContext(mc),
		translate.WithCacheSize(c.Cfg.CacheSize),
		translate.WithLogger(c.Logger),
	)
}

// OpenDatabase connects to the configured target.
func (c *CommandContext) OpenDatabase(ctx context.Context) (*db.Database, error) {
	d, err := c.Dialect("")
	if err != nil {
		return nil, err
	}
	mc, err := c.MacroContext(ctx)
	if err != nil {
		return nil, err
	}
	database, err := db.Open(ctx, c.Cfg.Target.AdapterConfig(),
		db.WithDialect(d),
		db.WithMacroContext(mc),
		db.WithCacheSize(c.Cfg.CacheSize),
		db.WithLogger(c.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.Cfg.Target, err)
	}
	return database, nil
}

// OpenState opens the state database and brings its schema up to date.
func (c *CommandContext) OpenState(ctx context.Context) (*state.Store, error) {
	store, err := state.Open(ctx, c.Cfg.StatePath, c.Logger)
	if err != nil {
		return nil, err
	}
	if _, err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// readSQL returns the statement from args, the --input file or piped stdin.
func readSQL(cmd *cobra.Command, args []string, inputFile string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case inputFile != "":
		content, err := os.ReadFile(inputFile) //nolint:gosec // user-supplied path is intended
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return "", errNoSQL
	}
	content, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return "", errNoSQL
	}
	return string(content), nil
}

var errNoSQL = errors.New("no SQL given (pass it as an argument, with --input or on stdin)")

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
