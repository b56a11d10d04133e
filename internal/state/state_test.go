package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/portsql/internal/testutil"
	"github.com/leapstack-labs/portsql/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	n, err := s.Migrate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	return s
}

func TestMigrations(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	v, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	statuses, err := s.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, int64(1), statuses[0].Version)
	assert.True(t, statuses[0].Applied)
	assert.True(t, statuses[1].Applied)

	// nothing pending
	n, err := s.Migrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	down, err := s.MigrateDown(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), down)

	statuses, err = s.Status(ctx)
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)

	down, err = s.MigrateDown(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), down)

	down, err = s.MigrateDown(ctx)
	require.NoError(t, err)
	assert.Zero(t, down)
}

func TestConstants(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	table := constants.New(
		constants.Code{Name: "entity_account", Value: 17, Description: "Account"},
		constants.Code{Name: "entity_group", Value: 18},
	)
	n, err := s.ImportConstants(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// re-import replaces codes
	_, err = s.ImportConstants(ctx, constants.New(constants.Code{Name: "entity_group", Value: 19}))
	require.NoError(t, err)

	got, err := s.Constants(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"entity_account", "entity_group"}, got.Names())

	c, err := got.Code("entity_account")
	require.NoError(t, err)
	assert.Equal(t, constants.Code{Name: "entity_account", Value: 17, Description: "Account"}, c)

	c, err = got.Code("entity_group")
	require.NoError(t, err)
	assert.Equal(t, 19, c.Value)

	ok, err := s.DeleteConstant(ctx, "entity_group")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.DeleteConstant(ctx, "entity_group")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	first := &Entry{Dialect: "sqlite", Statement: "select [:now]", Translated: "select datetime('now')"}
	require.NoError(t, s.RecordHistory(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &Entry{Dialect: "sqlite", Statement: "select 1; select 2", Error: "ProgrammingError: multiple statements"}
	require.NoError(t, s.RecordHistory(ctx, second))

	entries, err := s.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, "ProgrammingError: multiple statements", entries[0].Error)
	assert.Equal(t, first.Translated, entries[1].Translated)
	assert.False(t, entries[1].ExecutedAt.IsZero())

	entries, err = s.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpen_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	_, err = s.Migrate(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	assert.Equal(t, path, s.Path())
}
