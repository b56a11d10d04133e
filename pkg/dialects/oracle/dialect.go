// Package oracle provides the Oracle dialect. No Oracle driver ships with
// portsql; the dialect is used for translation only.
package oracle

import (
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/params"
)

func init() {
	dialect.Register(Oracle)
}

func qualify(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}

// Backend spells the standard macros for Oracle.
var Backend = macro.Backend{
	Table: qualify,
	Now:   "SYSDATE",
	Sequence: func(seq macro.Sequence) (string, error) {
		switch seq.Op {
		case macro.SeqNext:
			return qualify(seq.Schema, seq.Name) + ".nextval", nil
		case macro.SeqCurr:
			return qualify(seq.Schema, seq.Name) + ".currval", nil
		default:
			return "", macro.NotSupported("oracle cannot set sequence %s", qualify(seq.Schema, seq.Name))
		}
	},
	SequenceStart: "START WITH",
	FromDual:      "FROM DUAL",
}

// Macros is the Oracle macro table.
var Macros = macro.NewBuilder().Standard(Backend).Build()

// Oracle binds parameters as :1, :2, ...
var Oracle = dialect.NewDialect("oracle").
	Macros(Macros).
	Style(params.Numeric).
	Description("Oracle, numeric placeholders (translation only)").
	Build()
