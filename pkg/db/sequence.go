package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/macro"
)

// NextVal advances the sequence seq, written as "name" or "schema.name",
// and returns its new value.
func (d *Database) NextVal(ctx context.Context, seq string) (int64, error) {
	return d.sequenceValue(ctx, seq, "op=next")
}

// CurrVal returns the current value of seq.
func (d *Database) CurrVal(ctx context.Context, seq string) (int64, error) {
	return d.sequenceValue(ctx, seq, "op=curr")
}

// SetVal sets seq to v.
func (d *Database) SetVal(ctx context.Context, seq string, v int64) (int64, error) {
	return d.sequenceValue(ctx, seq, "op=set val="+strconv.FormatInt(v, 10))
}

func (d *Database) sequenceValue(ctx context.Context, seq, op string) (int64, error) {
	v, err := d.QueryValue(ctx, "SELECT "+sequenceMacro(seq, op)+" [:from_dual]", nil)
	if err != nil {
		return 0, err
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, dberr.Errorf(dberr.KindData, "sequence %s: %w", seq, err)
	}
	return n, nil
}

func sequenceMacro(seq, op string) string {
	var b strings.Builder
	b.WriteString("[:sequence ")
	if schema, name, ok := strings.Cut(seq, "."); ok {
		fmt.Fprintf(&b, "schema=%s name=%s ", macro.QuoteString(schema), macro.QuoteString(name))
	} else {
		fmt.Fprintf(&b, "name=%s ", macro.QuoteString(seq))
	}
	b.WriteString(op)
	b.WriteString("]")
	return b.String()
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected %T value", v)
	}
}
