package mysql

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/portsql/pkg/adapter"
	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(adapter.Config{
		Host:     "db",
		Database: "cerebrum",
		Username: "u",
		Password: "p",
	})

	mc, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "u", mc.User)
	assert.Equal(t, "p", mc.Passwd)
	assert.Equal(t, "tcp", mc.Net)
	assert.Equal(t, "db:3306", mc.Addr)
	assert.Equal(t, "cerebrum", mc.DBName)
	assert.True(t, mc.ParseTime)
}

func TestBuildDSN_Defaults(t *testing.T) {
	dsn := buildDSN(adapter.Config{Port: 3307, Options: map[string]string{"charset": "utf8mb4", "timeout": "5s"}})
	// the driver keeps charset out of Params once parsed, so check the DSN text
	assert.Contains(t, dsn, "charset=utf8mb4")

	mc, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "localhost:3307", mc.Addr)
	assert.Equal(t, 5*time.Second, mc.Timeout)
}

func TestRules(t *testing.T) {
	a := New(nil)
	r := adapter.Remapper(a)

	tests := []struct {
		name string
		err  error
		want dberr.Kind
	}{
		{"duplicate entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, dberr.KindIntegrity},
		{"foreign key", &mysql.MySQLError{Number: 1452}, dberr.KindIntegrity},
		{"syntax", &mysql.MySQLError{Number: 1064}, dberr.KindProgramming},
		{"no such table", &mysql.MySQLError{Number: 1146}, dberr.KindProgramming},
		{"data too long", &mysql.MySQLError{Number: 1406}, dberr.KindData},
		{"deadlock", &mysql.MySQLError{Number: 1213}, dberr.KindOperational},
		{"unlisted", &mysql.MySQLError{Number: 9999}, dberr.KindDatabase},
		{"invalid connection", fmt.Errorf("query: %w", mysql.ErrInvalidConn), dberr.KindOperational},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Wrap(tt.err, dberr.Diagnostics{})
			assert.Equal(t, tt.want, dberr.KindOf(got))
		})
	}

	assert.Equal(t, params.Qmark, a.Dialect().Style())
	assert.True(t, adapter.IsRegistered("mysql"))
}
