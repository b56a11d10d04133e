package postgres

import (
	"fmt"

	"github.com/leapstack-labs/portsql/pkg/macro"
)

// Backend spells the standard macros for PostgreSQL. Tables are left
// unqualified so the connection's search_path decides the schema.
var Backend = macro.Backend{
	Table: func(_, name string) string { return name },
	Now:   "NOW()",
	Sequence: func(seq macro.Sequence) (string, error) {
		switch seq.Op {
		case macro.SeqNext:
			return fmt.Sprintf("nextval('%s')", seq.Name), nil
		case macro.SeqCurr:
			return fmt.Sprintf("currval('%s')", seq.Name), nil
		default:
			return fmt.Sprintf("setval('%s', %d)", seq.Name, seq.Val), nil
		}
	},
	SequenceStart: "START",
}

// Macros is the PostgreSQL macro table.
var Macros = macro.NewBuilder().Standard(Backend).Build()
