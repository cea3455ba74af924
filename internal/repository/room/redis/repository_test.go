package redis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/internal/repository/room/roomtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, time.Hour, slog.Default()), s
}

func TestRepo(t *testing.T) {
	roomtest.Run(t, func(t *testing.T) roomtest.Repo {
		r, _ := newTestRepo(t)
		return r
	})
}

func TestKeysExpire(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRepo(t)

	_, err := r.GetOrCreateRoom(ctx, "r1")
	require.NoError(t, err)
	require.NoError(t, r.SetParticipant(ctx, &room.SetParticipantParams{RoomId: "r1", Id: "u1", DisplayName: "Ann"}))

	assert.Equal(t, time.Hour, s.TTL("room:r1"))
	assert.Equal(t, time.Hour, s.TTL("room:r1:participants"))
	assert.Equal(t, time.Hour, s.TTL("room:r1:participant:u1"))

	s.FastForward(2 * time.Hour)

	_, err = r.GetRoom(ctx, "r1")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestDeleteRoomRemovesAllKeys(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRepo(t)

	_, err := r.GetOrCreateRoom(ctx, "r1")
	require.NoError(t, err)
	_, err = r.SetHostIfEmpty(ctx, &room.SetHostParams{RoomId: "r1", HostId: "u1"})
	require.NoError(t, err)
	require.NoError(t, r.SetParticipant(ctx, &room.SetParticipantParams{RoomId: "r1", Id: "u1", DisplayName: "Ann"}))
	_, err = r.AddVideo(ctx, &room.AddVideoParams{RoomId: "r1", VideoId: "v1", ExternalId: "aaaaaaaaaaa", Title: "A"})
	require.NoError(t, err)
	_, err = r.AddControlRequest(ctx, &room.AddControlRequestParams{RoomId: "r1", RequesterId: "u2", RequesterName: "Bob"})
	require.NoError(t, err)

	require.NoError(t, r.DeleteRoom(ctx, "r1"))
	assert.Empty(t, s.Keys())
}
