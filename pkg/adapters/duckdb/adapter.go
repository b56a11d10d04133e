package duckdb

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/portsql/pkg/adapter"
	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	duckdialect "github.com/leapstack-labs/portsql/pkg/dialects/duckdb"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the DuckDB dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return duckdialect.DuckDB
}

// ErrorRules classifies go-duckdb errors by their error type.
func (a *Adapter) ErrorRules() []dberr.Rule {
	return Rules()
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	p, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if path == ":memory:" {
		// go-duckdb expects an empty DSN for an in-memory database
		path = ""
	}
	if err := a.Open(ctx, "duckdb", path, cfg); err != nil {
		return err
	}
	if path == "" {
		a.DB.SetMaxOpenConns(1)
	}

	for _, stmt := range setupStatements(p) {
		a.Logger.Debug("duckdb setup", slog.String("sql", stmt))
		if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
			_ = a.Close()
			a.DB = nil
			return fmt.Errorf("duckdb setup %q: %w", stmt, err)
		}
	}
	return nil
}

// setupStatements returns the session statements for p: extensions first,
// then settings in name order.
func setupStatements(p Params) []string {
	var stmts []string
	for _, ext := range p.Extensions {
		stmts = append(stmts, "INSTALL "+ext, "LOAD "+ext)
	}
	names := make([]string, 0, len(p.Settings))
	for name := range p.Settings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stmts = append(stmts, fmt.Sprintf("SET %s = '%s'", name, strings.ReplaceAll(p.Settings[name], "'", "''")))
	}
	return stmts
}
