package room

import "context"

// Repo is implemented by every room store backend.
type Repo interface {
	GetOrCreateRoom(context.Context, string) (Room, error)
	GetRoom(context.Context, string) (Room, error)
	SetHostIfEmpty(context.Context, *SetHostParams) (bool, error)
	SetNowPlayingTitle(context.Context, *SetNowPlayingTitleParams) error
	DeleteRoom(context.Context, string) error
	AddAllowedId(context.Context, *AddAllowedIdParams) (bool, error)
	SetParticipant(context.Context, *SetParticipantParams) error
	RemoveParticipant(context.Context, *RemoveParticipantParams) (bool, error)
	GetParticipants(context.Context, string) ([]Participant, error)
	AddVideo(context.Context, *AddVideoParams) (int, error)
	GetVideos(context.Context, string) ([]Video, error)
	AddControlRequest(context.Context, *AddControlRequestParams) (bool, error)
	RemoveControlRequest(context.Context, *RemoveControlRequestParams) (bool, error)
	GetControlRequests(context.Context, string) ([]ControlRequest, error)
}
