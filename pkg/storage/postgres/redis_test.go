package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/storage"
)

func setupRedisClientTest(t *testing.T) (*RedisClient, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	cfg := storage.DefaultConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	client, err := NewRedisClient(cfg)
	require.NoError(t, err)

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return client, mr, cleanup
}

func TestRedisClient_SchemaVersionRoundTrip(t *testing.T) {
	client, _, cleanup := setupRedisClientTest(t)
	defer cleanup()
	ctx := context.Background()

	v := &registrytypes.SchemaVersion{
		ID:           "version-1",
		TargetID:     "target-1",
		IsComposable: true,
		CreatedAt:    time.Now(),
	}

	require.NoError(t, client.SetSchemaVersion(ctx, v))

	got, err := client.GetSchemaVersion(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, v.TargetID, got.TargetID)

	require.NoError(t, client.InvalidateSchemaVersion(ctx, v.ID))
	got, err = client.GetSchemaVersion(ctx, v.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisClient_LatestVersionPointer(t *testing.T) {
	client, _, cleanup := setupRedisClientTest(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, client.SetLatestVersionID(ctx, "target-1", "version-9"))

	id, err := client.GetLatestVersionID(ctx, "target-1")
	require.NoError(t, err)
	require.Equal(t, "version-9", id)

	require.NoError(t, client.InvalidateLatest(ctx, "target-1"))
	id, err = client.GetLatestVersionID(ctx, "target-1")
	require.NoError(t, err)
	require.Equal(t, "", id)
}

func TestRedisClient_SetNXAndGetDel(t *testing.T) {
	client, _, cleanup := setupRedisClientTest(t)
	defer cleanup()
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "lock:key", "token", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.SetNX(ctx, "lock:key", "other", time.Second)
	require.NoError(t, err)
	require.False(t, ok)

	val, err := client.GetDel(ctx, "lock:key")
	require.NoError(t, err)
	require.Equal(t, "token", val)
}
