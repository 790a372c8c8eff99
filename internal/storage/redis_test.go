package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/tale-engine/pkg/state"
	"github.com/jwebster45206/tale-engine/pkg/storage"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	rs := NewRedisStorage(mr.Addr(), 0, logger)
	t.Cleanup(func() { _ = rs.Close() })

	return rs, mr
}

func TestRedisStorage_Ping(t *testing.T) {
	rs, _ := setupTestRedis(t)
	assert.NoError(t, rs.Ping(context.Background()))
}

func TestRedisStorage_SaveLoadSnapshot(t *testing.T) {
	rs, _ := setupTestRedis(t)
	ctx := context.Background()

	gs := state.NewGameState("Frisk", "ruins_entrance")
	gs.Player.Gold = 42
	require.NoError(t, gs.AddItem("bandage"))
	gs.CompleteEvent("intro")
	snap := gs.Snapshot()

	require.NoError(t, rs.SaveSnapshot(ctx, gs.ID.String(), snap))

	loaded, err := rs.LoadSnapshot(ctx, gs.ID.String())
	require.NoError(t, err)
	assert.Equal(t, snap.PlayerName, loaded.PlayerName)
	assert.Equal(t, 42, loaded.Gold)
	assert.Equal(t, []string{"bandage"}, loaded.Inventory)
	assert.Contains(t, loaded.CompletedEvents, "intro")
}

func TestRedisStorage_LoadSnapshot_NotFound(t *testing.T) {
	rs, _ := setupTestRedis(t)

	_, err := rs.LoadSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRedisStorage_DeleteSnapshot(t *testing.T) {
	rs, _ := setupTestRedis(t)
	ctx := context.Background()

	gs := state.NewGameState("Frisk", "ruins_entrance")
	require.NoError(t, rs.SaveSnapshot(ctx, "slot", gs.Snapshot()))
	require.NoError(t, rs.DeleteSnapshot(ctx, "slot"))

	_, err := rs.LoadSnapshot(ctx, "slot")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRedisStorage_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	rs := NewRedisStorage(mr.Addr(), time.Minute, logger)
	t.Cleanup(func() { _ = rs.Close() })

	gs := state.NewGameState("Frisk", "ruins_entrance")
	require.NoError(t, rs.SaveSnapshot(context.Background(), "slot", gs.Snapshot()))

	mr.FastForward(2 * time.Minute)
	_, err = rs.LoadSnapshot(context.Background(), "slot")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
