// Package adapter provides the contract between portsql and a database
// backend.
//
// An adapter opens a database/sql connection for one backend and supplies
// the dialect statements are translated to and the rules that map the
// driver's native errors onto the canonical hierarchy. Concrete adapter
// implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialect"
)

// Config holds configuration for connecting to a database.
type Config struct {
	Type     string
	Path     string // file-based backends (sqlite, duckdb)
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any // backend-specific, decoded by the adapter
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// SQLDB returns the underlying connection pool, or nil before Connect.
	SQLDB() *sql.DB

	// Dialect returns the dialect statements are translated to.
	Dialect() *dialect.Dialect

	// ErrorRules returns the rules classifying the driver's native errors.
	ErrorRules() []dberr.Rule
}

// Remapper returns a remapper combining the database/sql rules with the
// adapter's own.
func Remapper(a Adapter) *dberr.Remapper {
	return dberr.NewRemapper(append(dberr.StdRules(), a.ErrorRules()...)...)
}
