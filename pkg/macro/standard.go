package macro

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/portsql/pkg/constants"
	"github.com/leapstack-labs/portsql/pkg/dberr"
)

// TableArgs are the arguments of [:table].
type TableArgs struct {
	Schema string `macro:"schema"`
	Name   string `macro:"name,required"`
}

// SequenceArgs are the arguments of [:sequence].
type SequenceArgs struct {
	Schema string `macro:"schema"`
	Name   string `macro:"name,required"`
	Op     string `macro:"op,required"`
	Val    *int64 `macro:"val"`
}

// SequenceStartArgs are the arguments of [:sequence_start].
type SequenceStartArgs struct {
	Value int64 `macro:"value,required"`
}

// ConfigArgs are the arguments of [:get_config].
type ConfigArgs struct {
	Var string `macro:"var,required"`
}

// ConstantArgs are the arguments of [:get_constant].
type ConstantArgs struct {
	Name string `macro:"name,required"`
}

// BooleanArgs are the arguments of [:boolean].
type BooleanArgs struct {
	Default string `macro:"default"`
}

// SequenceOp is the op argument of [:sequence].
type SequenceOp int

// Sequence operations.
const (
	SeqNext SequenceOp = iota
	SeqCurr
	SeqSet
)

func (op SequenceOp) String() string {
	switch op {
	case SeqNext:
		return "next"
	case SeqCurr:
		return "curr"
	case SeqSet:
		return "set"
	default:
		return fmt.Sprintf("SequenceOp(%d)", int(op))
	}
}

// ParseSequenceOp parses next, curr (or current) and set.
func ParseSequenceOp(s string) (SequenceOp, error) {
	switch strings.ToLower(s) {
	case "next":
		return SeqNext, nil
	case "curr", "current":
		return SeqCurr, nil
	case "set":
		return SeqSet, nil
	default:
		return 0, dberr.Errorf(dberr.KindProgramming, "invalid sequence operation %q", s)
	}
}

// Sequence is a resolved [:sequence] call.
type Sequence struct {
	Schema string
	Name   string
	Op     SequenceOp
	Val    int64 // only for SeqSet
}

// Backend spells the standard operations for one database product.
type Backend struct {
	// Table renders a table reference.
	Table func(schema, name string) string

	// Now is the current-timestamp expression.
	Now string

	// Sequence renders a sequence operation. Return a NotSupportedError
	// for operations the backend lacks.
	Sequence func(seq Sequence) (string, error)

	// SequenceStart is the START clause prefix, e.g. "START" or "START WITH".
	SequenceStart string

	// FromDual is the FROM clause needed by a table-less SELECT, if any.
	FromDual string
}

// Standard registers table, now, sequence, sequence_start, from_dual,
// get_config, get_constant and boolean for be.
func (b *Builder) Standard(be Backend) *Builder {
	b.Register("table", Typed(func(a TableArgs, _ Context) (string, error) {
		return be.Table(a.Schema, a.Name), nil
	}))
	b.Register("now", Literal(be.Now))
	b.Register("sequence", Typed(func(a SequenceArgs, _ Context) (string, error) {
		op, err := ParseSequenceOp(a.Op)
		if err != nil {
			return "", err
		}
		seq := Sequence{Schema: a.Schema, Name: a.Name, Op: op}
		if op == SeqSet {
			if a.Val == nil {
				return "", dberr.New(dberr.KindProgramming, "op=set requires val")
			}
			seq.Val = *a.Val
		} else if a.Val != nil {
			return "", dberr.Errorf(dberr.KindProgramming, "val is only valid with op=set, not op=%s", op)
		}
		return be.Sequence(seq)
	}))
	b.Register("sequence_start", Typed(func(a SequenceStartArgs, mc Context) (string, error) {
		mc.logger().Warn("deprecated portability macro", slog.String("macro", "sequence_start"))
		return be.SequenceStart + " " + strconv.FormatInt(a.Value, 10), nil
	}))
	b.Register("from_dual", Literal(be.FromDual))
	b.Register("get_config", Typed(GetConfig))
	b.Register("get_constant", Typed(GetConstant))
	b.Register("boolean", Typed(func(_ BooleanArgs, mc Context) (string, error) {
		mc.logger().Warn("deprecated portability macro", slog.String("macro", "boolean"))
		return "", nil
	}))
	return b
}

// GetConfig expands to the quoted value of a string setting.
func GetConfig(a ConfigArgs, mc Context) (string, error) {
	if mc.Config == nil {
		return "", dberr.New(dberr.KindValue, "no configuration available")
	}
	v, ok := mc.Config.Get(a.Var)
	if !ok {
		return "", dberr.Errorf(dberr.KindValue, "no setting named %q", a.Var)
	}
	s, ok := v.(string)
	if !ok {
		return "", dberr.Errorf(dberr.KindValue, "setting %q is a %T, not a string", a.Var, v)
	}
	return QuoteString(s), nil
}

// GetConstant expands to the integer code of a domain constant.
func GetConstant(a ConstantArgs, mc Context) (string, error) {
	resolver := mc.Constants
	if resolver == nil && mc.NewConstants != nil {
		r, err := mc.NewConstants()
		if err != nil {
			return "", dberr.Errorf(dberr.KindValue, "loading constants: %w", err)
		}
		resolver = r
	}
	if resolver == nil {
		return "", dberr.New(dberr.KindValue, "no constants provider available")
	}
	v, ok := resolver.Lookup(a.Name)
	if !ok {
		return "", dberr.Errorf(dberr.KindValue, "unknown constant %q", a.Name)
	}
	n, err := constants.ToInt(v)
	if err != nil {
		return "", dberr.Errorf(dberr.KindValue, "constant %q: %w", a.Name, err)
	}
	return strconv.Itoa(n), nil
}

// QuoteString returns s as a single-quoted SQL string literal.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// NotSupported returns the error a Backend reports for an operation it
// lacks.
func NotSupported(format string, args ...any) error {
	return dberr.Errorf(dberr.KindNotSupported, format, args...)
}
