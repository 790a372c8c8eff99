package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/tale-engine/pkg/state"
)

func TestMockStorage_SaveLoadDelete(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	gs := state.NewGameState("Frisk", "start")
	require.NoError(t, m.SaveSnapshot(ctx, "slot", gs.Snapshot()))

	loaded, err := m.LoadSnapshot(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, "Frisk", loaded.PlayerName)

	require.NoError(t, m.DeleteSnapshot(ctx, "slot"))
	_, err = m.LoadSnapshot(ctx, "slot")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMockStorage_LoadReturnsCopy(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	gs := state.NewGameState("Frisk", "start")
	gs.Player.Gold = 10
	require.NoError(t, m.SaveSnapshot(ctx, "slot", gs.Snapshot()))

	first, err := m.LoadSnapshot(ctx, "slot")
	require.NoError(t, err)
	first.Gold = 999

	second, err := m.LoadSnapshot(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, 10, second.Gold)
}

func TestMockStorage_PingError(t *testing.T) {
	m := NewMockStorage()
	require.NoError(t, m.Ping(context.Background()))

	m.SetPingError(errors.New("down"))
	assert.Error(t, m.Ping(context.Background()))
}
