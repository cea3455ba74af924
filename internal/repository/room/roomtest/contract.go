// Package roomtest holds behaviour checks shared by every room repository
// implementation.
package roomtest

import (
	"context"
	"sync"
	"testing"

	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Repo = room.Repo

// Run exercises newRepo against the room repository contract. newRepo must
// return an empty repository on every call.
func Run(t *testing.T, newRepo func(t *testing.T) Repo) {
	t.Run("GetOrCreateRoom", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		_, err := r.GetRoom(ctx, "r1")
		assert.ErrorIs(t, err, room.ErrRoomNotFound)

		created, err := r.GetOrCreateRoom(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "r1", created.Id)
		assert.Empty(t, created.HostId)
		assert.Empty(t, created.AllowedIds)
		assert.Equal(t, room.WaitingTitle, created.NowPlayingTitle)

		again, err := r.GetOrCreateRoom(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, created, again)
	})

	t.Run("SetHostIfEmpty first writer wins", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		_, err := r.SetHostIfEmpty(ctx, &room.SetHostParams{RoomId: "missing", HostId: "u1"})
		assert.ErrorIs(t, err, room.ErrRoomNotFound)

		_, err = r.GetOrCreateRoom(ctx, "r1")
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make([]bool, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ok, err := r.SetHostIfEmpty(ctx, &room.SetHostParams{RoomId: "r1", HostId: string(rune('a' + i))})
				assert.NoError(t, err)
				results[i] = ok
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, ok := range results {
			if ok {
				winners++
			}
		}
		assert.Equal(t, 1, winners)

		got, err := r.GetRoom(ctx, "r1")
		require.NoError(t, err)
		assert.NotEmpty(t, got.HostId)
		assert.Equal(t, []string{got.HostId}, got.AllowedIds)
	})

	t.Run("AddAllowedId dedupes", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		_, err := r.GetOrCreateRoom(ctx, "r1")
		require.NoError(t, err)
		_, err = r.SetHostIfEmpty(ctx, &room.SetHostParams{RoomId: "r1", HostId: "u1"})
		require.NoError(t, err)

		added, err := r.AddAllowedId(ctx, &room.AddAllowedIdParams{RoomId: "r1", Id: "u2"})
		require.NoError(t, err)
		assert.True(t, added)

		added, err = r.AddAllowedId(ctx, &room.AddAllowedIdParams{RoomId: "r1", Id: "u2"})
		require.NoError(t, err)
		assert.False(t, added)

		added, err = r.AddAllowedId(ctx, &room.AddAllowedIdParams{RoomId: "r1", Id: "u1"})
		require.NoError(t, err)
		assert.False(t, added)

		got, err := r.GetRoom(ctx, "r1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"u1", "u2"}, got.AllowedIds)
	})

	t.Run("participants are unique and ordered", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		err := r.SetParticipant(ctx, &room.SetParticipantParams{RoomId: "r1", Id: "u1", DisplayName: "Ann"})
		assert.ErrorIs(t, err, room.ErrRoomNotFound)

		_, err = r.GetOrCreateRoom(ctx, "r1")
		require.NoError(t, err)

		require.NoError(t, r.SetParticipant(ctx, &room.SetParticipantParams{RoomId: "r1", Id: "u1", DisplayName: "Ann"}))
		require.NoError(t, r.SetParticipant(ctx, &room.SetParticipantParams{RoomId: "r1", Id: "u2", DisplayName: "Bob"}))
		require.NoError(t, r.SetParticipant(ctx, &room.SetParticipantParams{RoomId: "r1", Id: "u1", DisplayName: "Annie"}))

		participants, err := r.GetParticipants(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, []room.Participant{
			{Id: "u1", DisplayName: "Annie"},
			{Id: "u2", DisplayName: "Bob"},
		}, participants)

		removed, err := r.RemoveParticipant(ctx, &room.RemoveParticipantParams{RoomId: "r1", Id: "u1"})
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = r.RemoveParticipant(ctx, &room.RemoveParticipantParams{RoomId: "r1", Id: "u1"})
		require.NoError(t, err)
		assert.False(t, removed)

		participants, err = r.GetParticipants(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, []room.Participant{{Id: "u2", DisplayName: "Bob"}}, participants)
	})

	t.Run("playlist is append only", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		_, err := r.GetOrCreateRoom(ctx, "r1")
		require.NoError(t, err)

		videos, err := r.GetVideos(ctx, "r1")
		require.NoError(t, err)
		assert.Empty(t, videos)

		length, err := r.AddVideo(ctx, &room.AddVideoParams{
			RoomId: "r1", VideoId: "v1", ExternalId: "aaaaaaaaaaa", Title: "A", ThumbnailUrl: "thumb-a",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, length)

		length, err = r.AddVideo(ctx, &room.AddVideoParams{
			RoomId: "r1", VideoId: "v2", ExternalId: "aaaaaaaaaaa", Title: "A again", ThumbnailUrl: "thumb-a",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, length)

		videos, err = r.GetVideos(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, []room.Video{
			{Id: "v1", ExternalId: "aaaaaaaaaaa", Title: "A", ThumbnailUrl: "thumb-a"},
			{Id: "v2", ExternalId: "aaaaaaaaaaa", Title: "A again", ThumbnailUrl: "thumb-a"},
		}, videos)
	})

	t.Run("control requests dedupe", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		_, err := r.GetOrCreateRoom(ctx, "r1")
		require.NoError(t, err)

		added, err := r.AddControlRequest(ctx, &room.AddControlRequestParams{RoomId: "r1", RequesterId: "u2", RequesterName: "Bob"})
		require.NoError(t, err)
		assert.True(t, added)

		added, err = r.AddControlRequest(ctx, &room.AddControlRequestParams{RoomId: "r1", RequesterId: "u2", RequesterName: "Bob"})
		require.NoError(t, err)
		assert.False(t, added)

		added, err = r.AddControlRequest(ctx, &room.AddControlRequestParams{RoomId: "r1", RequesterId: "u3", RequesterName: "Cid"})
		require.NoError(t, err)
		assert.True(t, added)

		requests, err := r.GetControlRequests(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, []room.ControlRequest{
			{RequesterId: "u2", RequesterName: "Bob"},
			{RequesterId: "u3", RequesterName: "Cid"},
		}, requests)

		removed, err := r.RemoveControlRequest(ctx, &room.RemoveControlRequestParams{RoomId: "r1", RequesterId: "u2"})
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = r.RemoveControlRequest(ctx, &room.RemoveControlRequestParams{RoomId: "r1", RequesterId: "u2"})
		require.NoError(t, err)
		assert.False(t, removed)

		requests, err = r.GetControlRequests(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, []room.ControlRequest{{RequesterId: "u3", RequesterName: "Cid"}}, requests)
	})

	t.Run("SetNowPlayingTitle and DeleteRoom", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		err := r.SetNowPlayingTitle(ctx, &room.SetNowPlayingTitleParams{RoomId: "r1", Title: "Movie A"})
		assert.ErrorIs(t, err, room.ErrRoomNotFound)

		_, err = r.GetOrCreateRoom(ctx, "r1")
		require.NoError(t, err)
		require.NoError(t, r.SetNowPlayingTitle(ctx, &room.SetNowPlayingTitleParams{RoomId: "r1", Title: "Movie A"}))
		require.NoError(t, r.SetParticipant(ctx, &room.SetParticipantParams{RoomId: "r1", Id: "u1", DisplayName: "Ann"}))
		_, err = r.AddVideo(ctx, &room.AddVideoParams{RoomId: "r1", VideoId: "v1", ExternalId: "aaaaaaaaaaa", Title: "A"})
		require.NoError(t, err)

		got, err := r.GetRoom(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "Movie A", got.NowPlayingTitle)

		require.NoError(t, r.DeleteRoom(ctx, "r1"))
		_, err = r.GetRoom(ctx, "r1")
		assert.ErrorIs(t, err, room.ErrRoomNotFound)
		assert.ErrorIs(t, r.DeleteRoom(ctx, "r1"), room.ErrRoomNotFound)

		recreated, err := r.GetOrCreateRoom(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, room.WaitingTitle, recreated.NowPlayingTitle)
		participants, err := r.GetParticipants(ctx, "r1")
		require.NoError(t, err)
		assert.Empty(t, participants)
		videos, err := r.GetVideos(ctx, "r1")
		require.NoError(t, err)
		assert.Empty(t, videos)
	})
}
