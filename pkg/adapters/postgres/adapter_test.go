package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leapstack-labs/portsql/pkg/adapter"
	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/params"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  adapter.Config
		want string
	}{
		{
			name: "defaults",
			cfg:  adapter.Config{Database: "cerebrum"},
			want: "host=localhost port=5432 dbname=cerebrum sslmode=disable",
		},
		{
			name: "full",
			cfg: adapter.Config{
				Host:     "db.example.org",
				Port:     6543,
				Database: "cerebrum",
				Username: "cerebrum",
				Password: "s3cret",
				Schema:   "cerebrum",
				Options:  map[string]string{"sslmode": "require"},
			},
			want: "host=db.example.org port=6543 dbname=cerebrum sslmode=require user=cerebrum password=s3cret search_path=cerebrum",
		},
		{
			name: "quoted password",
			cfg:  adapter.Config{Database: "x", Password: "it's a pw"},
			want: `host=localhost port=5432 dbname=x sslmode=disable password='it\'s a pw'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildPostgresDSN(tt.cfg))
		})
	}
}

func TestSQLDriver(t *testing.T) {
	name, err := sqlDriver(DriverPgx)
	require.NoError(t, err)
	assert.Equal(t, "pgx", name)

	name, err = sqlDriver(DriverPq)
	require.NoError(t, err)
	assert.Equal(t, "postgres", name)

	_, err = sqlDriver("odbc")
	assert.Error(t, err)
}

func TestConnect_BadDriverOption(t *testing.T) {
	a := New(nil)
	err := a.Connect(context.Background(), adapter.Config{Options: map[string]string{"driver": "odbc"}})
	require.Error(t, err)
	assert.False(t, a.IsConnected())
}

func TestDialect(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "pgx", a.Dialect().Name)
	assert.Equal(t, params.Dollar, a.Dialect().Style())
	assert.True(t, adapter.IsRegistered("postgres"))
}

func TestRules(t *testing.T) {
	r := adapter.Remapper(New(nil))

	tests := []struct {
		name string
		err  error
		want dberr.Kind
	}{
		{"pgx unique violation", &pgconn.PgError{Code: "23505", Message: "duplicate key"}, dberr.KindIntegrity},
		{"pgx undefined table", &pgconn.PgError{Code: "42P01"}, dberr.KindProgramming},
		{"pgx division by zero", &pgconn.PgError{Code: "22012"}, dberr.KindData},
		{"pgx serialization failure", &pgconn.PgError{Code: "40001"}, dberr.KindOperational},
		{"pgx feature not supported", &pgconn.PgError{Code: "0A000"}, dberr.KindNotSupported},
		{"pgx internal", &pgconn.PgError{Code: "XX000"}, dberr.KindInternal},
		{"pgx unlisted class", &pgconn.PgError{Code: "P0001"}, dberr.KindDatabase},
		{"pq foreign key violation", &pq.Error{Code: "23503"}, dberr.KindIntegrity},
		{"pq syntax error", &pq.Error{Code: "42601"}, dberr.KindProgramming},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23502"}), dberr.KindIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Wrap(tt.err, dberr.Diagnostics{SQL: "insert"})
			assert.Equal(t, tt.want, dberr.KindOf(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}

	plain := errors.New("not a postgres error")
	assert.Same(t, plain, r.Wrap(plain, dberr.Diagnostics{}))
}

func TestSQLState(t *testing.T) {
	code, ok := SQLState(&pq.Error{Code: "23505"})
	require.True(t, ok)
	assert.Equal(t, "23505", code)

	_, ok = SQLState(errors.New("x"))
	assert.False(t, ok)
}
