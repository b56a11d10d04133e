// Package postgres provides the PostgreSQL dialects.
// This package is pure Go with no database driver dependencies,
// so translation works without the overhead of a connection.
package postgres

import (
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/params"
)

func init() {
	dialect.Register(Postgres)
	dialect.Register(Pgx)
}

// Postgres is the canonical PostgreSQL dialect. It keeps :name
// placeholders, for drivers that bind by name.
var Postgres = dialect.NewDialect("postgres").
	Macros(Macros).
	Style(params.Named).
	Description("PostgreSQL, named placeholders").
	Build()

// Pgx is PostgreSQL with $N placeholders, as expected by pgx and lib/pq.
var Pgx = dialect.From(Postgres, "pgx").
	Style(params.Dollar).
	Description("PostgreSQL via pgx or lib/pq, $N placeholders").
	Build()
