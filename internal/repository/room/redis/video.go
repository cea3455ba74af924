package redis

import (
	"context"
	"fmt"

	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getPlaylistKey(roomId string) string {
	return "room:" + roomId + ":playlist"
}

func (r repo) getVideoKey(roomId, videoId string) string {
	return "room:" + roomId + ":video:" + videoId
}

func (r repo) AddVideo(ctx context.Context, params *room.AddVideoParams) (int, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.checkRoomExists(ctx, params.RoomId); err != nil {
		return 0, err
	}

	videoKey := r.getVideoKey(params.RoomId, params.VideoId)
	playlistKey := r.getPlaylistKey(params.RoomId)

	pipe := r.rc.TxPipeline()
	r.hSetStruct(ctx, pipe, videoKey, room.Video{
		Id:           params.VideoId,
		ExternalId:   params.ExternalId,
		Title:        params.Title,
		ThumbnailUrl: params.ThumbnailUrl,
	})
	pushCmd := pipe.RPush(ctx, playlistKey, params.VideoId)
	r.expire(ctx, pipe, videoKey, playlistKey)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return 0, fmt.Errorf("failed to add video: %w", err)
	}

	return int(pushCmd.Val()), nil
}

func (r repo) GetVideos(ctx context.Context, roomId string) ([]room.Video, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	if err := r.checkRoomExists(ctx, roomId); err != nil {
		return nil, err
	}

	playlistKey := r.getPlaylistKey(roomId)
	videoIds, err := r.rc.LRange(ctx, playlistKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get video ids: %w", err)
	}

	videos := make([]room.Video, 0, len(videoIds))
	for _, videoId := range videoIds {
		videoKey := r.getVideoKey(roomId, videoId)
		var video room.Video
		if err := r.rc.HGetAll(ctx, videoKey).Scan(&video); err != nil {
			return nil, fmt.Errorf("failed to get video: %w", err)
		}

		if video.Id == "" {
			r.logger.WarnContext(ctx, "video listed without data", "room_id", roomId, "video_id", videoId)
			continue
		}

		r.expire(ctx, r.rc, videoKey)
		videos = append(videos, video)
	}

	r.expire(ctx, r.rc, playlistKey)

	return videos, nil
}
