package db

import (
	"fmt"
	"strings"
)

// Pattern is a WHERE predicate and the value to bind to it.
type Pattern struct {
	SQL   string
	Value any
}

// SQLPattern builds a predicate matching column against value. ref names
// the bind parameter and defaults to the unqualified column name.
//
// A nil value gives IS NULL. A string value is matched case-insensitively
// when it contains no upper-case letters; otherwise it is compared exactly,
// with LIKE only when it contains wildcards. In both cases ? matches any
// one character and * any run of characters. Other values compare with =.
func SQLPattern(column string, value any, ref string) Pattern {
	if ref == "" {
		ref = column[strings.LastIndexByte(column, '.')+1:]
	}
	s, ok := value.(string)
	switch {
	case value == nil:
		return Pattern{SQL: column + " IS NULL"}
	case !ok:
		return Pattern{SQL: fmt.Sprintf("%s = :%s", column, ref), Value: value}
	case strings.ToLower(s) == s:
		return Pattern{SQL: fmt.Sprintf("LOWER(%s) LIKE :%s", column, ref), Value: wildcards.Replace(s)}
	case strings.ContainsAny(s, "?*"):
		return Pattern{SQL: fmt.Sprintf("%s LIKE :%s", column, ref), Value: wildcards.Replace(s)}
	default:
		return Pattern{SQL: fmt.Sprintf("%s = :%s", column, ref), Value: s}
	}
}

var wildcards = strings.NewReplacer("?", "_", "*", "%")
