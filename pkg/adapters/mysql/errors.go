package mysql

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/portsql/pkg/dberr"
)

// serverErrors maps MySQL server error numbers onto the canonical kinds.
// Numbers not listed fall back to DatabaseError.
var serverErrors = map[uint16]dberr.Kind{
	1022: dberr.KindIntegrity, // duplicate key
	1048: dberr.KindIntegrity, // column cannot be null
	1062: dberr.KindIntegrity, // duplicate entry
	1169: dberr.KindIntegrity,
	1216: dberr.KindIntegrity, // foreign key, no parent row
	1217: dberr.KindIntegrity, // foreign key, child rows exist
	1364: dberr.KindIntegrity, // field has no default
	1451: dberr.KindIntegrity,
	1452: dberr.KindIntegrity,
	1557: dberr.KindIntegrity,
	3819: dberr.KindIntegrity, // check constraint

	1264: dberr.KindData, // out of range
	1265: dberr.KindData, // data truncated
	1292: dberr.KindData, // incorrect value
	1366: dberr.KindData, // incorrect string value
	1406: dberr.KindData, // data too long
	1365: dberr.KindData, // division by zero

	1049: dberr.KindProgramming, // unknown database
	1050: dberr.KindProgramming, // table exists
	1051: dberr.KindProgramming, // unknown table
	1054: dberr.KindProgramming, // unknown column
	1060: dberr.KindProgramming, // duplicate column name
	1064: dberr.KindProgramming, // syntax error
	1110: dberr.KindProgramming,
	1146: dberr.KindProgramming, // no such table
	1149: dberr.KindProgramming,
	1327: dberr.KindProgramming, // undeclared variable

	1040: dberr.KindOperational, // too many connections
	1045: dberr.KindOperational, // access denied
	1205: dberr.KindOperational, // lock wait timeout
	1213: dberr.KindOperational, // deadlock
	1290: dberr.KindOperational, // read-only server

	1235: dberr.KindNotSupported,
	1289: dberr.KindNotSupported,

	1105: dberr.KindInternal, // unknown error
}

// Number returns the server error number of a MySQL error.
func Number(err error) (uint16, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number, true
	}
	return 0, false
}

// Rules returns the error rules for go-sql-driver/mysql.
func Rules() []dberr.Rule {
	rules := dberr.CodeRules(Number, serverErrors, dberr.KindDatabase)
	return append(rules,
		dberr.Rule{Kind: dberr.KindOperational, Match: dberr.Is(mysql.ErrInvalidConn)},
		dberr.Rule{Kind: dberr.KindInterface, Match: dberr.Is(mysql.ErrMalformPkt)},
	)
}
