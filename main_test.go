package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/config"
	"vidtube/jobs"
	"vidtube/models"
	"vidtube/store/sqlstore"
)

func TestOpenStore_SQLiteCreatesDirAndSchema(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "nested", "vidtube.db")}
	st, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close(context.Background()) })
	assert.IsType(t, &sqlstore.Store{}, st)

	ctx := context.Background()
	require.NoError(t, st.Ping(ctx))
	u := &models.User{Username: "alice", Email: "alice@example.com", FullName: "Alice"}
	require.NoError(t, st.CreateUser(ctx, u, "hash"))

	// Reopening runs migrations again without error.
	require.NoError(t, st.Close(ctx))
	st2, err := openStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st2.Close(context.Background()) })
	got, err := st2.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), &config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestOpenQueue_DefaultsToMemory(t *testing.T) {
	q, err := openQueue(&config.Config{QueueDriver: config.QueueMemory}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	assert.IsType(t, &jobs.MemoryQueue{}, q)
}
