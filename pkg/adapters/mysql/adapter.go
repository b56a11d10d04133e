package mysql

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/portsql/pkg/adapter"
	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	mysqldialect "github.com/leapstack-labs/portsql/pkg/dialects/mysql"
)

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new MySQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the MySQL dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return mysqldialect.MySQL
}

// ErrorRules classifies MySQL server error numbers.
func (a *Adapter) ErrorRules() []dberr.Rule {
	return Rules()
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	return a.Open(ctx, "mysql", buildDSN(cfg), cfg)
}

// buildDSN constructs a go-sql-driver/mysql data source name.
func buildDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	for k, v := range cfg.Options {
		if mc.Params == nil {
			mc.Params = make(map[string]string)
		}
		mc.Params[k] = v
	}
	return mc.FormatDSN()
}
