package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/portsql/pkg/adapter"
	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	pgdialect "github.com/leapstack-labs/portsql/pkg/dialects/postgres"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver
)

// Driver names accepted in the "driver" option.
const (
	DriverPgx = "pgx"
	DriverPq  = "pq"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the $N-placeholder PostgreSQL dialect, which both pgx
// and lib/pq expect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return pgdialect.Pgx
}

// ErrorRules classifies pgx and lib/pq errors by SQLSTATE class.
func (a *Adapter) ErrorRules() []dberr.Rule {
	return Rules()
}

// Connect establishes a connection to PostgreSQL. The "driver" option
// selects pgx (default) or pq.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	driverName, err := sqlDriver(cfg.Option("driver", DriverPgx))
	if err != nil {
		return err
	}
	return a.Open(ctx, driverName, buildPostgresDSN(cfg), cfg)
}

func sqlDriver(name string) (string, error) {
	switch name {
	case DriverPgx:
		return "pgx", nil
	case DriverPq:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unknown postgres driver %q (want %s or %s)", name, DriverPgx, DriverPq)
	}
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, cfg.Option("sslmode", "disable"))

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", quoteDSNValue(cfg.Password))
	}
	if cfg.Schema != "" {
		dsn += fmt.Sprintf(" search_path=%s", cfg.Schema)
	}
	if name := cfg.Option("application_name", ""); name != "" {
		dsn += fmt.Sprintf(" application_name=%s", quoteDSNValue(name))
	}

	return dsn
}

// quoteDSNValue quotes a keyword/value connection string value that
// contains spaces or quotes.
func quoteDSNValue(v string) string {
	needs := v == ""
	for _, r := range v {
		if r == ' ' || r == '\'' || r == '\\' {
			needs = true
			break
		}
	}
	if !needs {
		return v
	}
	out := make([]rune, 0, len(v)+2)
	out = append(out, '\'')
	for _, r := range v {
		if r == '\'' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(append(out, '\''))
}
