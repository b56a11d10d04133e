package sqlite

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/portsql/pkg/adapter"
	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	sqlitedialect "github.com/leapstack-labs/portsql/pkg/dialects/sqlite"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the SQLite dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return sqlitedialect.SQLite
}

// ErrorRules classifies modernc.org/sqlite result codes.
func (a *Adapter) ErrorRules() []dberr.Rule {
	return Rules()
}

// Connect opens the database file at cfg.Path. Use ":memory:" (or an
// empty path) for an in-memory database; its pool is limited to a single
// connection so every statement sees the same database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	p, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}
	if err := a.Open(ctx, "sqlite", buildDSN(cfg.Path, p), cfg); err != nil {
		return err
	}
	if isMemory(cfg.Path) {
		a.DB.SetMaxOpenConns(1)
	}
	return nil
}
