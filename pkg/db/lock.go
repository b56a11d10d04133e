package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/macro"
)

// LockMode is a table lock mode.
type LockMode int

// Table lock modes, weakest first.
const (
	LockAccessShare LockMode = iota
	LockRowShare
	LockRowExclusive
	LockShareUpdateExclusive
	LockShare
	LockShareRowExclusive
	LockExclusive
	LockAccessExclusive
)

var lockModeNames = [...]string{
	LockAccessShare:          "ACCESS SHARE",
	LockRowShare:             "ROW SHARE",
	LockRowExclusive:         "ROW EXCLUSIVE",
	LockShareUpdateExclusive: "SHARE UPDATE EXCLUSIVE",
	LockShare:                "SHARE",
	LockShareRowExclusive:    "SHARE ROW EXCLUSIVE",
	LockExclusive:            "EXCLUSIVE",
	LockAccessExclusive:      "ACCESS EXCLUSIVE",
}

func (m LockMode) String() string {
	if m < 0 || int(m) >= len(lockModeNames) {
		return fmt.Sprintf("LockMode(%d)", int(m))
	}
	return lockModeNames[m]
}

// lockingDialects take LOCK TABLE ... IN <mode> MODE.
var lockingDialects = map[string]bool{
	"postgres": true,
	"pgx":      true,
}

// Lock locks table, written as "name" or "schema.name", for the rest of tx.
// Backends without LOCK TABLE return a NotSupportedError.
func (d *Database) Lock(ctx context.Context, tx *sql.Tx, table string, mode LockMode) error {
	if !lockingDialects[d.dialect.Name] {
		return dberr.Errorf(dberr.KindNotSupported, "table locks are not supported by %s", d.dialect.Name)
	}
	if mode < 0 || int(mode) >= len(lockModeNames) {
		return dberr.Errorf(dberr.KindProgramming, "invalid lock mode %d", int(mode))
	}
	_, err := d.TxCursor(tx).Execute(ctx, fmt.Sprintf("LOCK TABLE %s IN %s MODE", tableMacro(table), mode), nil)
	return err
}

func tableMacro(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return fmt.Sprintf("[:table schema=%s name=%s]", macro.QuoteString(schema), macro.QuoteString(name))
	}
	return fmt.Sprintf("[:table name=%s]", macro.QuoteString(table))
}
