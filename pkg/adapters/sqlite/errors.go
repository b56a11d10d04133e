package sqlite

import (
	"errors"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// primaryCodes maps SQLite primary result codes onto the canonical kinds.
// SQLITE_ERROR covers syntax errors and missing tables and columns.
var primaryCodes = map[int]dberr.Kind{
	sqlite3.SQLITE_ERROR:      dberr.KindProgramming,
	sqlite3.SQLITE_MISUSE:     dberr.KindProgramming,
	sqlite3.SQLITE_CONSTRAINT: dberr.KindIntegrity,
	sqlite3.SQLITE_MISMATCH:   dberr.KindData,
	sqlite3.SQLITE_TOOBIG:     dberr.KindData,
	sqlite3.SQLITE_RANGE:      dberr.KindProgramming,
	sqlite3.SQLITE_INTERNAL:   dberr.KindInternal,
	sqlite3.SQLITE_CORRUPT:    dberr.KindInternal,
	sqlite3.SQLITE_NOTADB:     dberr.KindInternal,
	sqlite3.SQLITE_PERM:       dberr.KindOperational,
	sqlite3.SQLITE_ABORT:      dberr.KindOperational,
	sqlite3.SQLITE_BUSY:       dberr.KindOperational,
	sqlite3.SQLITE_LOCKED:     dberr.KindOperational,
	sqlite3.SQLITE_NOMEM:      dberr.KindOperational,
	sqlite3.SQLITE_READONLY:   dberr.KindOperational,
	sqlite3.SQLITE_INTERRUPT:  dberr.KindOperational,
	sqlite3.SQLITE_IOERR:      dberr.KindOperational,
	sqlite3.SQLITE_FULL:       dberr.KindOperational,
	sqlite3.SQLITE_CANTOPEN:   dberr.KindOperational,
	sqlite3.SQLITE_PROTOCOL:   dberr.KindOperational,
	sqlite3.SQLITE_SCHEMA:     dberr.KindOperational,
	sqlite3.SQLITE_AUTH:       dberr.KindOperational,
}

// PrimaryCode returns the primary result code of a SQLite error. Extended
// codes carry the primary code in their low byte.
func PrimaryCode(err error) (int, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() & 0xff, true
	}
	return 0, false
}

// Rules returns the error rules for modernc.org/sqlite.
func Rules() []dberr.Rule {
	return dberr.CodeRules(PrimaryCode, primaryCodes, dberr.KindDatabase)
}
