package collections

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE collections (
  key       TEXT PRIMARY KEY,
  value     TEXT NOT NULL,
  encrypted INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "medications", `[{"id":"1"}]`, false))

	row, err := r.Get(ctx, "medications")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, `[{"id":"1"}]`, row.Value)
	assert.False(t, row.Encrypted)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	row, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestSet_UpsertReplacesValueAndFlag(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "logs", "plain", false))
	require.NoError(t, r.Set(ctx, "logs", "Zm9vYmFy", true))

	row, err := r.Get(ctx, "logs")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Zm9vYmFy", row.Value)
	assert.True(t, row.Encrypted, "flag must follow the stored form")
}

func TestDelete_Idempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", "v", false))
	require.NoError(t, r.Delete(ctx, "x"))

	row, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, row)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestKeys_SortedListing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "measurements", "[]", false))
	require.NoError(t, r.Set(ctx, "medications", "[]", false))

	keys, err := r.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"measurements", "medications"}, keys)
}
