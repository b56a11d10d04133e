// Package duckdb provides the DuckDB dialect.
package duckdb

import (
	"fmt"

	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/params"
)

func init() {
	dialect.Register(DuckDB)
}

// Backend spells the standard macros for DuckDB.
var Backend = macro.Backend{
	Table: func(_, name string) string { return name },
	Now:   "CURRENT_TIMESTAMP",
	Sequence: func(seq macro.Sequence) (string, error) {
		switch seq.Op {
		case macro.SeqNext:
			return fmt.Sprintf("nextval('%s')", seq.Name), nil
		case macro.SeqCurr:
			return fmt.Sprintf("currval('%s')", seq.Name), nil
		default:
			return "", macro.NotSupported("duckdb cannot set sequence %s", seq.Name)
		}
	},
	SequenceStart: "START",
}

// Macros is the DuckDB macro table.
var Macros = macro.NewBuilder().Standard(Backend).Build()

// DuckDB binds parameters as $1, $2, ...
var DuckDB = dialect.NewDialect("duckdb").
	Macros(Macros).
	Style(params.Dollar).
	Description("DuckDB via go-duckdb, $N placeholders").
	Build()
