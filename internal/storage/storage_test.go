package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase_AppliesSchema(t *testing.T) {
	ctx := context.Background()

	repos, err := InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	// Both tables exist and are usable after migration.
	require.NoError(t, repos.Metadata.Set(ctx, "encryption_enabled", []byte("1")))
	v, err := repos.Metadata.Get(ctx, "encryption_enabled")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, repos.Collections.Set(ctx, "medications", "[]", false))
	row, err := repos.Collections.Get(ctx, "medications")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "[]", row.Value)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()

	repos, err := InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	require.NoError(t, RunMigrations(ctx, repos.DB), "re-running migrations must be a no-op")
}
