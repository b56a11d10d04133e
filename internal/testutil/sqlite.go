package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// OpenMemDB opens a private in-memory SQLite database that is closed when
// the test ends. The pool is limited to one connection because every new
// connection to ":memory:" would see an empty database.
func OpenMemDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
