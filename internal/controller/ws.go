package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
)

func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	channelId := uuid.NewString()
	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("channel_id", channelId))
	if err := c.channelRepo.Add(channelId, conn); err != nil {
		c.logger.WarnContext(ctx, "failed to register channel", "error", err)
		return
	}

	sess := &session{}
	ctx = context.WithValue(ctx, channelIdCtxKey, channelId)
	ctx = context.WithValue(ctx, sessionCtxKey, sess)
	defer c.disconnect(ctx, channelId, sess)

	c.logger.InfoContext(ctx, "websocket connected")
	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			c.logger.InfoContext(ctx, "websocket closed unexpectedly", "error", err)
			return
		}
		c.logger.DebugContext(ctx, "websocket closed", "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, channelId string, sess *session) {
	if err := c.channelRepo.Remove(channelId); err != nil {
		c.logger.WarnContext(ctx, "failed to remove channel", "error", err)
	}

	if sess.roomId == "" {
		return
	}

	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_id", sess.roomId))
	if _, err := c.roomService.DisconnectMember(ctx, &room.DisconnectMemberParams{
		RoomId:    sess.roomId,
		ChannelId: channelId,
	}); err != nil && !errors.Is(err, room.ErrRoomNotFound) {
		c.logger.WarnContext(ctx, "failed to disconnect member", "error", err)
	}
}
