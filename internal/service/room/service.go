package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/pkg/ytvideodata"
)

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrRoomNotFound         = errors.New("room not found")
	ErrTargetUnreachable    = errors.New("target unreachable")
	ErrNotJoined            = errors.New("channel has not joined a room")
	ErrPlaylistLimitReached = errors.New("playlist limit reached")
	ErrMembersLimitReached  = errors.New("members limit reached")
	ErrRelayNotFound        = errors.New("relay not found")
)

type iRoomRepo interface {
	// room
	GetOrCreateRoom(context.Context, string) (room.Room, error)
	GetRoom(context.Context, string) (room.Room, error)
	SetHostIfEmpty(context.Context, *room.SetHostParams) (bool, error)
	SetNowPlayingTitle(context.Context, *room.SetNowPlayingTitleParams) error
	DeleteRoom(context.Context, string) error
	AddAllowedId(context.Context, *room.AddAllowedIdParams) (bool, error)
	// participant
	SetParticipant(context.Context, *room.SetParticipantParams) error
	RemoveParticipant(context.Context, *room.RemoveParticipantParams) (bool, error)
	GetParticipants(context.Context, string) ([]room.Participant, error)
	// playlist
	AddVideo(context.Context, *room.AddVideoParams) (int, error)
	GetVideos(context.Context, string) ([]room.Video, error)
	// control request
	AddControlRequest(context.Context, *room.AddControlRequestParams) (bool, error)
	RemoveControlRequest(context.Context, *room.RemoveControlRequestParams) (bool, error)
	GetControlRequests(context.Context, string) ([]room.ControlRequest, error)
}

type iBindingRepo interface {
	Bind(roomId, identity, channelId string)
	GetChannelId(roomId, identity string) (string, error)
	GetIdentity(roomId, channelId string) (string, error)
	RemoveByRoomId(roomId string) int
}

type iSender interface {
	Send(channelId string, v any) error
}

type iVideoData interface {
	Get(ctx context.Context, videoId string) (*ytvideodata.VideoData, error)
}

type Config struct {
	MembersLimit    int
	PlaylistLimit   int
	RoomGracePeriod time.Duration
	RelayTimeout    time.Duration
	AckDenials      bool
}

type service struct {
	roomRepo      iRoomRepo
	bindingRepo   iBindingRepo
	sender        iSender
	videoData     iVideoData
	logger        *slog.Logger
	membersLimit  int
	playlistLimit int
	ackDenials    bool
	locks         *keyedMutex
	relays        *relayRegistry
	teardowns     *teardownScheduler
}

func NewService(
	roomRepo iRoomRepo,
	bindingRepo iBindingRepo,
	sender iSender,
	videoData iVideoData,
	cfg *Config,
	logger *slog.Logger,
) *service {
	return &service{
		roomRepo:      roomRepo,
		bindingRepo:   bindingRepo,
		sender:        sender,
		videoData:     videoData,
		logger:        logger,
		membersLimit:  cfg.MembersLimit,
		playlistLimit: cfg.PlaylistLimit,
		ackDenials:    cfg.AckDenials,
		locks:         newKeyedMutex(),
		relays:        newRelayRegistry(cfg.RelayTimeout),
		teardowns:     newTeardownScheduler(cfg.RoomGracePeriod),
	}
}

// Close stops pending relay and teardown timers.
func (s service) Close() {
	s.relays.stopAll()
	s.teardowns.stopAll()
}
