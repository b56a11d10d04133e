package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/lib/pq"
)

// sqlstateClasses maps the first two characters of a SQLSTATE onto the
// canonical kinds. Classes not listed fall back to DatabaseError.
var sqlstateClasses = map[string]dberr.Kind{
	"08": dberr.KindOperational, // connection exception
	"0A": dberr.KindNotSupported,
	"21": dberr.KindProgramming, // cardinality violation
	"22": dberr.KindData,
	"23": dberr.KindIntegrity,
	"24": dberr.KindInternal, // invalid cursor state
	"25": dberr.KindInternal, // invalid transaction state
	"26": dberr.KindProgramming,
	"27": dberr.KindOperational, // triggered data change violation
	"28": dberr.KindOperational, // invalid authorization
	"2B": dberr.KindInternal,
	"2D": dberr.KindInternal,
	"34": dberr.KindProgramming, // invalid cursor name
	"3D": dberr.KindProgramming, // invalid catalog name
	"3F": dberr.KindProgramming, // invalid schema name
	"40": dberr.KindOperational, // transaction rollback
	"42": dberr.KindProgramming, // syntax error or access rule violation
	"44": dberr.KindProgramming,
	"53": dberr.KindOperational, // insufficient resources
	"54": dberr.KindOperational, // program limit exceeded
	"55": dberr.KindOperational,
	"57": dberr.KindOperational, // operator intervention
	"58": dberr.KindOperational,
	"XX": dberr.KindInternal,
}

// SQLState returns the SQLSTATE of a pgx or lib/pq error.
func SQLState(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}

func sqlstateClass(err error) (string, bool) {
	code, ok := SQLState(err)
	if !ok || len(code) < 2 {
		return "", ok
	}
	return code[:2], true
}

// Rules returns the error rules for both PostgreSQL drivers.
func Rules() []dberr.Rule {
	return dberr.CodeRules(sqlstateClass, sqlstateClasses, dberr.KindDatabase)
}
