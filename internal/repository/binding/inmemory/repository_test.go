package inmemory

import (
	"log/slog"
	"testing"

	"github.com/sharetube/watchparty/internal/repository/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindLookups(t *testing.T) {
	r := NewRepo(slog.Default())

	_, err := r.GetChannelId("r1", "u1")
	assert.ErrorIs(t, err, binding.ErrNotFound)
	_, err = r.GetIdentity("r1", "c1")
	assert.ErrorIs(t, err, binding.ErrNotFound)

	r.Bind("r1", "u1", "c1")

	channelId, err := r.GetChannelId("r1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "c1", channelId)

	identity, err := r.GetIdentity("r1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "u1", identity)

	_, err = r.GetChannelId("r2", "u1")
	assert.ErrorIs(t, err, binding.ErrNotFound)
	_, err = r.GetIdentity("r2", "c1")
	assert.ErrorIs(t, err, binding.ErrNotFound)
}

func TestBindReconnectOverwrites(t *testing.T) {
	r := NewRepo(slog.Default())

	r.Bind("r1", "u1", "c1")
	r.Bind("r1", "u1", "c2")

	channelId, err := r.GetChannelId("r1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "c2", channelId)

	_, err = r.GetIdentity("r1", "c1")
	assert.ErrorIs(t, err, binding.ErrNotFound, "old channel must not resolve after reconnect")
}

func TestBindChannelReuseOverwrites(t *testing.T) {
	r := NewRepo(slog.Default())

	r.Bind("r1", "u1", "c1")
	r.Bind("r1", "u2", "c1")

	identity, err := r.GetIdentity("r1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "u2", identity)

	_, err = r.GetChannelId("r1", "u1")
	assert.ErrorIs(t, err, binding.ErrNotFound)
}

func TestBindSameIdentityInTwoRooms(t *testing.T) {
	r := NewRepo(slog.Default())

	r.Bind("r1", "u2", "c2")
	r.Bind("r2", "u2", "c3")

	channelId, err := r.GetChannelId("r1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "c2", channelId)
	channelId, err = r.GetChannelId("r2", "u2")
	require.NoError(t, err)
	assert.Equal(t, "c3", channelId)

	identity, err := r.GetIdentity("r1", "c2")
	require.NoError(t, err)
	assert.Equal(t, "u2", identity)
	_, err = r.GetIdentity("r1", "c3")
	assert.ErrorIs(t, err, binding.ErrNotFound)
}

func TestBindChannelMovesRoom(t *testing.T) {
	r := NewRepo(slog.Default())

	r.Bind("r1", "u1", "c1")
	r.Bind("r2", "u1", "c1")

	_, err := r.GetChannelId("r1", "u1")
	assert.ErrorIs(t, err, binding.ErrNotFound)
	_, err = r.GetIdentity("r1", "c1")
	assert.ErrorIs(t, err, binding.ErrNotFound)

	identity, err := r.GetIdentity("r2", "c1")
	require.NoError(t, err)
	assert.Equal(t, "u1", identity)
}

func TestRemoveByRoomId(t *testing.T) {
	r := NewRepo(slog.Default())

	r.Bind("r1", "u1", "c1")
	r.Bind("r1", "u2", "c2")
	r.Bind("r2", "u3", "c3")
	r.Bind("r2", "u2", "c4")

	assert.Equal(t, 2, r.RemoveByRoomId("r1"))

	_, err := r.GetChannelId("r1", "u1")
	assert.ErrorIs(t, err, binding.ErrNotFound)
	_, err = r.GetIdentity("r1", "c1")
	assert.ErrorIs(t, err, binding.ErrNotFound)

	channelId, err := r.GetChannelId("r2", "u2")
	require.NoError(t, err)
	assert.Equal(t, "c4", channelId)
	channelId, err = r.GetChannelId("r2", "u3")
	require.NoError(t, err)
	assert.Equal(t, "c3", channelId)
}
