package room

import (
	"context"
	"errors"
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/watchparty/internal/repository/room"
)

type JoinRoomParams struct {
	RoomId      string
	ChannelId   string
	Identity    string
	DisplayName string
}

func (p *JoinRoomParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.RoomId, roomIdRule...),
		validation.Field(&p.ChannelId, channelIdRule...),
		validation.Field(&p.Identity, identityRule...),
		validation.Field(&p.DisplayName, displayNameRule...),
	)
}

type JoinRoomResponse struct {
	Role         Role
	Participants []Participant
}

// JoinRoom adds or re-adds identity to the room, creating the room on first
// use, and brings the joiner up to date.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	if err := params.Validate(); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("invalid join params: %w", err)
	}

	unlock := s.locks.Lock(params.RoomId)
	defer unlock()

	current, err := s.roomRepo.GetOrCreateRoom(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get or create room: %w", err)
	}

	participants, err := s.roomRepo.GetParticipants(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get participants: %w", err)
	}

	isMember := slices.ContainsFunc(participants, func(p room.Participant) bool {
		return p.Id == params.Identity
	})
	if !isMember && s.membersLimit > 0 && len(participants) >= s.membersLimit {
		return JoinRoomResponse{}, ErrMembersLimitReached
	}

	if current.HostId == "" {
		if _, err := s.roomRepo.SetHostIfEmpty(ctx, &room.SetHostParams{
			RoomId: params.RoomId,
			HostId: params.Identity,
		}); err != nil {
			return JoinRoomResponse{}, fmt.Errorf("failed to set host: %w", err)
		}

		current, err = s.roomRepo.GetRoom(ctx, params.RoomId)
		if err != nil {
			return JoinRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
		}
	}

	s.bindingRepo.Bind(params.RoomId, params.Identity, params.ChannelId)

	if err := s.roomRepo.SetParticipant(ctx, &room.SetParticipantParams{
		RoomId:      params.RoomId,
		Id:          params.Identity,
		DisplayName: params.DisplayName,
	}); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to set participant: %w", err)
	}

	// the room is no longer empty, a pending teardown must not run
	if s.teardowns.cancel(params.RoomId) {
		s.logger.DebugContext(ctx, "room teardown canceled")
	}

	role := resolveRole(current, params.Identity)
	s.logger.InfoContext(ctx, "joined room", "identity", params.Identity, "role", role, "rejoin", isMember)

	joiner := toChannel(params.ChannelId)
	//nolint:errcheck
	s.dispatch(ctx, params.RoomId, joiner, EventRoleUpdate, &RoleUpdatePayload{Role: role})

	videos, err := s.getVideos(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}
	//nolint:errcheck
	s.dispatch(ctx, params.RoomId, joiner, EventUpdatePlaylist, &PlaylistPayload{Playlist: videos})
	//nolint:errcheck
	s.dispatch(ctx, params.RoomId, joiner, EventUpdateTitle, &TitlePayload{Title: current.NowPlayingTitle})

	updated, err := s.broadcastUserList(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	//nolint:errcheck
	s.dispatch(ctx, params.RoomId, toAllExcept(params.ChannelId), EventReceiveMessage, &ChatPayload{
		User: SystemUser,
		Msg:  fmt.Sprintf("%s has joined the party!", params.DisplayName),
	})

	switch role {
	case RoleHost:
		if err := s.sendRequestsToHost(ctx, current); err != nil {
			return JoinRoomResponse{}, err
		}
	case RoleViewer:
		s.requestState(ctx, current, params.ChannelId)
	}

	return JoinRoomResponse{
		Role:         role,
		Participants: updated,
	}, nil
}

type DisconnectMemberParams struct {
	RoomId    string
	ChannelId string
}

type DisconnectMemberResponse struct {
	Removed     bool
	IsRoomEmpty bool
}

// DisconnectMember removes the participant behind channelId unless its
// identity has since been bound to another channel.
func (s service) DisconnectMember(ctx context.Context, params *DisconnectMemberParams) (DisconnectMemberResponse, error) {
	unlock := s.locks.Lock(params.RoomId)
	defer unlock()

	for _, rl := range s.relays.takeAll(func(rl *relay) bool { return rl.requesterChannelId == params.ChannelId }) {
		s.logger.DebugContext(ctx, "dropped relay of disconnected requester", "request_id", rl.id)
	}

	identity, err := s.bindingRepo.GetIdentity(params.RoomId, params.ChannelId)
	if err != nil {
		s.logger.DebugContext(ctx, "channel no longer bound, keeping participant")
		return DisconnectMemberResponse{}, nil
	}

	current, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return DisconnectMemberResponse{}, ErrRoomNotFound
		}
		return DisconnectMemberResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	name := s.displayName(ctx, params.RoomId, identity, identity)
	removed, err := s.roomRepo.RemoveParticipant(ctx, &room.RemoveParticipantParams{
		RoomId: params.RoomId,
		Id:     identity,
	})
	if err != nil {
		return DisconnectMemberResponse{}, fmt.Errorf("failed to remove participant: %w", err)
	}
	if !removed {
		return DisconnectMemberResponse{}, nil
	}

	s.logger.InfoContext(ctx, "left room", "identity", identity)

	pruned, err := s.roomRepo.RemoveControlRequest(ctx, &room.RemoveControlRequestParams{
		RoomId:      params.RoomId,
		RequesterId: identity,
	})
	if err != nil {
		return DisconnectMemberResponse{}, fmt.Errorf("failed to remove control request: %w", err)
	}
	if pruned {
		if err := s.sendRequestsToHost(ctx, current); err != nil {
			return DisconnectMemberResponse{}, err
		}
	}

	if identity == current.HostId {
		s.failRelays(ctx, func(rl *relay) bool { return rl.roomId == params.RoomId }, reasonHostDisconnected)
	}

	participants, err := s.broadcastUserList(ctx, params.RoomId)
	if err != nil {
		return DisconnectMemberResponse{}, err
	}

	if len(participants) == 0 {
		s.teardowns.schedule(params.RoomId, func() { s.teardownRoom(params.RoomId) })
		return DisconnectMemberResponse{Removed: true, IsRoomEmpty: true}, nil
	}

	//nolint:errcheck
	s.dispatch(ctx, params.RoomId, toAll(), EventReceiveMessage, &ChatPayload{
		User: SystemUser,
		Msg:  fmt.Sprintf("%s has left the party", name),
	})

	return DisconnectMemberResponse{Removed: true}, nil
}

// getSender resolves the identity behind channelId and the room it acts on.
func (s service) getSender(ctx context.Context, roomId, channelId string) (room.Room, string, error) {
	identity, err := s.bindingRepo.GetIdentity(roomId, channelId)
	if err != nil {
		return room.Room{}, "", ErrNotJoined
	}

	current, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return room.Room{}, "", ErrRoomNotFound
		}
		return room.Room{}, "", fmt.Errorf("failed to get room: %w", err)
	}

	return current, identity, nil
}

func (s service) getParticipants(ctx context.Context, roomId string) ([]Participant, error) {
	participants, err := s.roomRepo.GetParticipants(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	res := make([]Participant, 0, len(participants))
	for _, p := range participants {
		res = append(res, Participant{
			Id:          p.Id,
			DisplayName: p.DisplayName,
		})
	}

	return res, nil
}

func (s service) broadcastUserList(ctx context.Context, roomId string) ([]Participant, error) {
	participants, err := s.getParticipants(ctx, roomId)
	if err != nil {
		return nil, err
	}

	//nolint:errcheck
	s.dispatch(ctx, roomId, toAll(), EventUpdateUserList, &UserListPayload{
		Count:        len(participants),
		Participants: participants,
	})

	return participants, nil
}

// displayName returns the display name of identity or fallback when it is not
// a participant.
func (s service) displayName(ctx context.Context, roomId, identity, fallback string) string {
	participants, err := s.roomRepo.GetParticipants(ctx, roomId)
	if err != nil {
		return fallback
	}

	for _, p := range participants {
		if p.Id == identity {
			return p.DisplayName
		}
	}

	return fallback
}
