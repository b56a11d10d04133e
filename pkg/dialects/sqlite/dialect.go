// Package sqlite provides the SQLite dialect.
package sqlite

import (
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/params"
)

func init() {
	dialect.Register(SQLite)
}

// Backend spells the standard macros for SQLite. SQLite has no sequences;
// schemas name attached databases, so tables stay unqualified.
var Backend = macro.Backend{
	Table: func(_, name string) string { return name },
	Now:   "datetime('now')",
	Sequence: func(seq macro.Sequence) (string, error) {
		return "", macro.NotSupported("sqlite has no sequences (%s)", seq.Name)
	},
	SequenceStart: "START",
}

// Macros is the SQLite macro table.
var Macros = macro.NewBuilder().Standard(Backend).Build()

// SQLite binds parameters with ?.
var SQLite = dialect.NewDialect("sqlite").
	Macros(Macros).
	Style(params.Qmark).
	Description("SQLite via modernc.org/sqlite, ? placeholders").
	Build()
