package inmemory

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/sharetube/watchparty/internal/repository/room"
)

type roomEntry struct {
	hostId          string
	allowedIds      []string
	nowPlayingTitle string
	participants    []room.Participant
	playlist        []room.Video
	requests        []room.ControlRequest
}

func (e *roomEntry) snapshot(roomId string) room.Room {
	return room.Room{
		Id:              roomId,
		HostId:          e.hostId,
		AllowedIds:      slices.Clone(e.allowedIds),
		NowPlayingTitle: e.nowPlayingTitle,
	}
}

type repo struct {
	rooms  map[string]*roomEntry
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		rooms:  make(map[string]*roomEntry),
		logger: logger,
	}
}

func (r *repo) getEntry(roomId string) (*roomEntry, error) {
	entry, ok := r.rooms[roomId]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return entry, nil
}

func (r *repo) GetOrCreateRoom(ctx context.Context, roomId string) (room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomId]
	if !ok {
		r.logger.DebugContext(ctx, "room created", "room_id", roomId)
		entry = &roomEntry{nowPlayingTitle: room.WaitingTitle}
		r.rooms[roomId] = entry
	}

	return entry.snapshot(roomId), nil
}

func (r *repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, err := r.getEntry(roomId)
	if err != nil {
		return room.Room{}, err
	}

	return entry.snapshot(roomId), nil
}

func (r *repo) SetHostIfEmpty(ctx context.Context, params *room.SetHostParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.getEntry(params.RoomId)
	if err != nil {
		return false, err
	}

	if entry.hostId != "" {
		return false, nil
	}

	entry.hostId = params.HostId
	if !slices.Contains(entry.allowedIds, params.HostId) {
		entry.allowedIds = append(entry.allowedIds, params.HostId)
	}

	return true, nil
}

func (r *repo) SetNowPlayingTitle(ctx context.Context, params *room.SetNowPlayingTitleParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.getEntry(params.RoomId)
	if err != nil {
		return err
	}

	entry.nowPlayingTitle = params.Title
	return nil
}

func (r *repo) DeleteRoom(ctx context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getEntry(roomId); err != nil {
		return err
	}

	delete(r.rooms, roomId)
	return nil
}

func (r *repo) AddAllowedId(ctx context.Context, params *room.AddAllowedIdParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.getEntry(params.RoomId)
	if err != nil {
		return false, err
	}

	if slices.Contains(entry.allowedIds, params.Id) {
		return false, nil
	}

	entry.allowedIds = append(entry.allowedIds, params.Id)
	return true, nil
}

func (r *repo) SetParticipant(ctx context.Context, params *room.SetParticipantParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.getEntry(params.RoomId)
	if err != nil {
		return err
	}

	i := slices.IndexFunc(entry.participants, func(p room.Participant) bool {
		return p.Id == params.Id
	})
	if i >= 0 {
		entry.participants[i].DisplayName = params.DisplayName
		return nil
	}

	entry.participants = append(entry.participants, room.Participant{
		Id:          params.Id,
		DisplayName: params.DisplayName,
	})
	return nil
}

func (r *repo) RemoveParticipant(ctx context.Context, params *room.RemoveParticipantParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.getEntry(params.RoomId)
	if err != nil {
		return false, err
	}

	before := len(entry.participants)
	entry.participants = slices.DeleteFunc(entry.participants, func(p room.Participant) bool {
		return p.Id == params.Id
	})

	return len(entry.participants) != before, nil
}

func (r *repo) GetParticipants(ctx context.Context, roomId string) ([]room.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, err := r.getEntry(roomId)
	if err != nil {
		return nil, err
	}

	return slices.Clone(entry.participants), nil
}

func (r *repo) AddVideo(ctx context.Context, params *room.AddVideoParams) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.getEntry(params.RoomId)
	if err != nil {
		return 0, err
	}

	entry.playlist = append(entry.playlist, room.Video{
		Id:           params.VideoId,
		ExternalId:   params.ExternalId,
		Title:        params.Title,
		ThumbnailUrl: params.ThumbnailUrl,
	})

	return len(entry.playlist), nil
}

func (r *repo) GetVideos(ctx context.Context, roomId string) ([]room.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, err := r.getEntry(roomId)
	if err != nil {
		return nil, err
	}

	return slices.Clone(entry.playlist), nil
}

func (r *repo) AddControlRequest(ctx context.Context, params *room.AddControlRequestParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.getEntry(params.RoomId)
	if err != nil {
		return false, err
	}

	if slices.ContainsFunc(entry.requests, func(req room.ControlRequest) bool {
		return req.RequesterId == params.RequesterId
	}) {
		return false, nil
	}

	entry.requests = append(entry.requests, room.ControlRequest{
		RequesterId:   params.RequesterId,
		RequesterName: params.RequesterName,
	})
	return true, nil
}

func (r *repo) RemoveControlRequest(ctx context.Context, params *room.RemoveControlRequestParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.getEntry(params.RoomId)
	if err != nil {
		return false, err
	}

	before := len(entry.requests)
	entry.requests = slices.DeleteFunc(entry.requests, func(req room.ControlRequest) bool {
		return req.RequesterId == params.RequesterId
	})

	return len(entry.requests) != before, nil
}

func (r *repo) GetControlRequests(ctx context.Context, roomId string) ([]room.ControlRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, err := r.getEntry(roomId)
	if err != nil {
		return nil, err
	}

	return slices.Clone(entry.requests), nil
}
