package redis

import (
	"context"
	"fmt"

	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getAllowedKey(roomId string) string {
	return "room:" + roomId + ":allowed"
}

func (r repo) getRoom(ctx context.Context, roomId string) (room.Room, error) {
	roomKey := r.getRoomKey(roomId)
	fields, err := r.rc.HGetAll(ctx, roomKey).Result()
	if err != nil {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	if len(fields) == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	allowedKey := r.getAllowedKey(roomId)
	allowedIds, err := r.rc.SMembers(ctx, allowedKey).Result()
	if err != nil {
		return room.Room{}, fmt.Errorf("failed to get allowed ids: %w", err)
	}

	r.expire(ctx, r.rc, roomKey, allowedKey)

	return room.Room{
		Id:              roomId,
		HostId:          fields["host_id"],
		AllowedIds:      allowedIds,
		NowPlayingTitle: fields["now_playing_title"],
	}, nil
}

func (r repo) GetOrCreateRoom(ctx context.Context, roomId string) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	created, err := r.rc.HSetNX(ctx, r.getRoomKey(roomId), "now_playing_title", room.WaitingTitle).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, fmt.Errorf("failed to create room: %w", err)
	}

	if created {
		r.logger.DebugContext(ctx, "room created", "room_id", roomId)
	}

	return r.getRoom(ctx, roomId)
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	return r.getRoom(ctx, roomId)
}

func (r repo) SetHostIfEmpty(ctx context.Context, params *room.SetHostParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	res, err := r.setHostIfEmptyScript.Run(ctx, r.rc,
		[]string{r.getRoomKey(params.RoomId), r.getAllowedKey(params.RoomId)},
		params.HostId,
	).Int()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, fmt.Errorf("failed to set host: %w", err)
	}

	if res == -1 {
		return false, room.ErrRoomNotFound
	}

	r.expire(ctx, r.rc, r.getAllowedKey(params.RoomId))

	return res == 1, nil
}

func (r repo) SetNowPlayingTitle(ctx context.Context, params *room.SetNowPlayingTitleParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.checkRoomExists(ctx, params.RoomId); err != nil {
		return err
	}

	roomKey := r.getRoomKey(params.RoomId)
	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, roomKey, "now_playing_title", params.Title)
	r.expire(ctx, pipe, roomKey)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set now playing title: %w", err)
	}

	return nil
}

func (r repo) AddAllowedId(ctx context.Context, params *room.AddAllowedIdParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.checkRoomExists(ctx, params.RoomId); err != nil {
		return false, err
	}

	allowedKey := r.getAllowedKey(params.RoomId)
	pipe := r.rc.TxPipeline()
	addCmd := pipe.SAdd(ctx, allowedKey, params.Id)
	r.expire(ctx, pipe, allowedKey)

	if err := r.executePipe(ctx, pipe); err != nil {
		return false, fmt.Errorf("failed to add allowed id: %w", err)
	}

	return addCmd.Val() == 1, nil
}

func (r repo) DeleteRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	if err := r.checkRoomExists(ctx, roomId); err != nil {
		return err
	}

	participantIds, err := r.rc.ZRange(ctx, r.getParticipantListKey(roomId), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get participant ids: %w", err)
	}

	videoIds, err := r.rc.LRange(ctx, r.getPlaylistKey(roomId), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get video ids: %w", err)
	}

	requestIds, err := r.rc.ZRange(ctx, r.getRequestListKey(roomId), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get request ids: %w", err)
	}

	keys := []string{
		r.getRoomKey(roomId),
		r.getAllowedKey(roomId),
		r.getParticipantListKey(roomId),
		r.getPlaylistKey(roomId),
		r.getRequestListKey(roomId),
	}
	for _, id := range participantIds {
		keys = append(keys, r.getParticipantKey(roomId, id))
	}
	for _, id := range videoIds {
		keys = append(keys, r.getVideoKey(roomId, id))
	}
	for _, id := range requestIds {
		keys = append(keys, r.getRequestKey(roomId, id))
	}

	if err := r.rc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}
