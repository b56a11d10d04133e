// Package mysql provides a MySQL and MariaDB adapter for portsql, built on
// go-sql-driver/mysql.
//
// This file registers the MySQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/portsql/pkg/adapters/mysql"
package mysql

import (
	"log/slog"

	"github.com/leapstack-labs/portsql/pkg/adapter"
)

func init() {
	adapter.Register("mysql", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
