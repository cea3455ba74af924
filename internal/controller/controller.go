package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	wssender "github.com/sharetube/watchparty/internal/repository/ws-sender"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type iRoomService interface {
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	DisconnectMember(context.Context, *room.DisconnectMemberParams) (room.DisconnectMemberResponse, error)
	AddVideo(context.Context, *room.AddVideoParams) (room.AddVideoResponse, error)
	ChangeVideo(context.Context, *room.ChangeVideoParams) error
	SyncAction(context.Context, *room.SyncActionParams) error
	RequestHostTime(context.Context, *room.RequestHostTimeParams) (room.RequestHostTimeResponse, error)
	HostSendsTime(context.Context, *room.HostSendsTimeParams) error
	SendCurrentState(context.Context, *room.SendCurrentStateParams) error
	RaiseHand(context.Context, *room.RaiseHandParams) (room.RaiseHandResponse, error)
	ResolveRequest(context.Context, *room.ResolveRequestParams) (room.ResolveRequestResponse, error)
	SendMessage(context.Context, *room.SendMessageParams) error
}

type iChannelRepo interface {
	Add(channelId string, conn wssender.Conn) error
	Remove(channelId string) error
}

type controller struct {
	roomService iRoomService
	channelRepo iChannelRepo
	upgrader    websocket.Upgrader
	wsmux       *wsrouter.WSRouter
	validate    *validator.Validator
	logger      *slog.Logger
}

func NewController(roomService iRoomService, channelRepo iChannelRepo, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		channelRepo: channelRepo,
		validate:    validator.NewValidator(),
		logger:      logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
