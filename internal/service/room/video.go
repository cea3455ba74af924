package room

import (
	"context"
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/pkg/ytvideodata"
)

type AddVideoParams struct {
	RoomId    string
	ChannelId string
	VideoId   string
	Title     string
}

func (p *AddVideoParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.VideoId, videoIdRule...),
		validation.Field(&p.Title, titleRule...),
	)
}

type AddVideoResponse struct {
	Video       Video
	PlaylistLen int
	AutoPlayed  bool
}

// AddVideo appends a video to the playlist. The first video of a room also
// becomes the now playing one.
func (s service) AddVideo(ctx context.Context, params *AddVideoParams) (AddVideoResponse, error) {
	if err := params.Validate(); err != nil {
		return AddVideoResponse{}, fmt.Errorf("invalid video params: %w", err)
	}

	title := s.resolveTitle(ctx, params.VideoId, params.Title)

	unlock := s.locks.Lock(params.RoomId)
	defer unlock()

	current, identity, err := s.getSender(ctx, params.RoomId, params.ChannelId)
	if err != nil {
		return AddVideoResponse{}, err
	}

	if !authorize(current, identity, actionAddToPlaylist) {
		return AddVideoResponse{}, s.deny(ctx, params.ChannelId, actionAddToPlaylist, denyReasonNotAllowed)
	}

	if s.playlistLimit > 0 {
		videos, err := s.roomRepo.GetVideos(ctx, params.RoomId)
		if err != nil {
			return AddVideoResponse{}, fmt.Errorf("failed to get videos: %w", err)
		}

		if len(videos) >= s.playlistLimit {
			return AddVideoResponse{}, ErrPlaylistLimitReached
		}
	}

	video := Video{
		Id:           uuid.NewString(),
		VideoId:      params.VideoId,
		Title:        title,
		ThumbnailUrl: ytvideodata.ThumbnailURL(params.VideoId),
	}
	playlistLen, err := s.roomRepo.AddVideo(ctx, &room.AddVideoParams{
		RoomId:       params.RoomId,
		VideoId:      video.Id,
		ExternalId:   video.VideoId,
		Title:        video.Title,
		ThumbnailUrl: video.ThumbnailUrl,
	})
	if err != nil {
		return AddVideoResponse{}, fmt.Errorf("failed to add video: %w", err)
	}

	videos, err := s.getVideos(ctx, params.RoomId)
	if err != nil {
		return AddVideoResponse{}, err
	}

	//nolint:errcheck
	s.dispatch(ctx, params.RoomId, toAll(), EventUpdatePlaylist, &PlaylistPayload{Playlist: videos})

	autoPlayed := playlistLen == 1
	if autoPlayed {
		if err := s.setNowPlaying(ctx, params.RoomId, video.VideoId, video.Title); err != nil {
			return AddVideoResponse{}, err
		}
	}

	return AddVideoResponse{
		Video:       video,
		PlaylistLen: playlistLen,
		AutoPlayed:  autoPlayed,
	}, nil
}

type ChangeVideoParams struct {
	RoomId    string
	ChannelId string
	VideoId   string
	Title     string
}

func (p *ChangeVideoParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.VideoId, videoIdRule...),
		validation.Field(&p.Title, titleRule...),
	)
}

// ChangeVideo switches the now playing video. Requires an allowed identity.
func (s service) ChangeVideo(ctx context.Context, params *ChangeVideoParams) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid video params: %w", err)
	}

	unlock := s.locks.Lock(params.RoomId)
	defer unlock()

	current, identity, err := s.getSender(ctx, params.RoomId, params.ChannelId)
	if err != nil {
		return err
	}

	if !authorize(current, identity, actionChangeVideo) {
		return s.deny(ctx, params.ChannelId, actionChangeVideo, denyReasonNotAllowed)
	}

	title := s.resolveTitle(ctx, params.VideoId, params.Title)
	if err := s.setNowPlaying(ctx, params.RoomId, params.VideoId, title); err != nil {
		return err
	}

	//nolint:errcheck
	s.dispatch(ctx, params.RoomId, toAll(), EventReceiveMessage, &ChatPayload{
		User: SystemUser,
		Msg:  fmt.Sprintf("%s changed the video to %s", s.displayName(ctx, params.RoomId, identity, identity), title),
	})

	return nil
}

type SyncActionParams struct {
	RoomId    string
	ChannelId string
	Payload   json.RawMessage
}

// SyncAction forwards a playback action verbatim to everyone but the sender.
func (s service) SyncAction(ctx context.Context, params *SyncActionParams) error {
	unlock := s.locks.Lock(params.RoomId)
	defer unlock()

	current, identity, err := s.getSender(ctx, params.RoomId, params.ChannelId)
	if err != nil {
		return err
	}

	if !authorize(current, identity, actionSyncPlayback) {
		return s.deny(ctx, params.ChannelId, actionSyncPlayback, denyReasonNotAllowed)
	}

	payload := params.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	return s.dispatch(ctx, params.RoomId, toAllExcept(params.ChannelId), EventSyncAction, payload)
}

func (s service) setNowPlaying(ctx context.Context, roomId, videoId, title string) error {
	if err := s.roomRepo.SetNowPlayingTitle(ctx, &room.SetNowPlayingTitleParams{
		RoomId: roomId,
		Title:  title,
	}); err != nil {
		return fmt.Errorf("failed to set now playing title: %w", err)
	}

	//nolint:errcheck
	s.dispatch(ctx, roomId, toAll(), EventChangeVideo, &ChangeVideoPayload{
		VideoId: videoId,
		Title:   title,
	})
	//nolint:errcheck
	s.dispatch(ctx, roomId, toAll(), EventUpdateTitle, &TitlePayload{Title: title})

	return nil
}

// resolveTitle falls back to a lookup and then to the video id itself.
func (s service) resolveTitle(ctx context.Context, videoId, title string) string {
	if title != "" || s.videoData == nil {
		if title == "" {
			return videoId
		}
		return title
	}

	videoData, err := s.videoData.Get(ctx, videoId)
	if err != nil || videoData.Title == "" {
		s.logger.DebugContext(ctx, "video title lookup failed", "video_id", videoId, "error", err)
		return videoId
	}

	return videoData.Title
}

func (s service) getVideos(ctx context.Context, roomId string) ([]Video, error) {
	videos, err := s.roomRepo.GetVideos(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get videos: %w", err)
	}

	res := make([]Video, 0, len(videos))
	for _, v := range videos {
		res = append(res, Video{
			Id:           v.Id,
			VideoId:      v.ExternalId,
			Title:        v.Title,
			ThumbnailUrl: v.ThumbnailUrl,
		})
	}

	return res, nil
}
