package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Open, Close and SQLDB implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Open opens driverName with dsn and verifies the connection.
func (b *BaseSQLAdapter) Open(ctx context.Context, driverName, dsn string, cfg Config) error {
	if b.Logger == nil {
		b.Logger = slog.New(slog.DiscardHandler)
	}
	b.Logger.Debug("connecting",
		slog.String("driver", driverName),
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", driverName, err)
	}

	b.DB = db
	b.Cfg = cfg
	return nil
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// SQLDB returns the connection pool.
func (b *BaseSQLAdapter) SQLDB() *sql.DB {
	return b.DB
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// Option returns cfg.Options[key], or def when it is unset.
func (cfg Config) Option(key, def string) string {
	if v, ok := cfg.Options[key]; ok && v != "" {
		return v
	}
	return def
}
