// Package mysql provides the MySQL and MariaDB dialect.
package mysql

import (
	"fmt"

	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/params"
)

func init() {
	dialect.Register(MySQL)
}

// Backend spells the standard macros for MySQL. Sequences use the MariaDB
// 10.3+ syntax; plain MySQL rejects them at execution time.
var Backend = macro.Backend{
	Table: func(_, name string) string { return name },
	Now:   "CURRENT_TIMESTAMP",
	Sequence: func(seq macro.Sequence) (string, error) {
		switch seq.Op {
		case macro.SeqNext:
			return "NEXT VALUE FOR " + seq.Name, nil
		case macro.SeqCurr:
			return "PREVIOUS VALUE FOR " + seq.Name, nil
		default:
			return fmt.Sprintf("SETVAL(%s, %d)", seq.Name, seq.Val), nil
		}
	},
	SequenceStart: "START WITH",
	FromDual:      "FROM DUAL",
}

// Macros is the MySQL macro table.
var Macros = macro.NewBuilder().Standard(Backend).Build()

// MySQL binds parameters with ?.
var MySQL = dialect.NewDialect("mysql").
	Macros(Macros).
	Style(params.Qmark).
	Description("MySQL/MariaDB via go-sql-driver/mysql, ? placeholders").
	Build()
