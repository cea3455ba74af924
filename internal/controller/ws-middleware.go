package controller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

var errNotJoined = errors.New("join a room first")

func (c controller) wsRequestIdWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", c.generateTimeBasedId()))
			return next(ctx, conn, payload)
		}
	}
}

func (c controller) loggerWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)))
			if roomId := c.getRoomIdFromCtx(ctx); roomId != "" {
				ctx = ctxlogger.AppendCtx(ctx, slog.String("room_id", roomId))
			}
			c.logger.DebugContext(ctx, "websocket message received")

			start := time.Now()
			err := next(ctx, conn, payload)
			c.logger.DebugContext(ctx, "websocket message handled", "processing_time_us", time.Since(start).Microseconds())

			return err
		}
	}
}

// joinedWSMw rejects room scoped messages on connections that have not joined.
func (c controller) joinedWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			switch wsrouter.GetMessageTypeFromCtx(ctx) {
			case "alive", "join-room":
				return next(ctx, conn, payload)
			}

			if c.getRoomIdFromCtx(ctx) == "" {
				return errNotJoined
			}

			return next(ctx, conn, payload)
		}
	}
}

func (c controller) handleWSError(ctx context.Context, _ *websocket.Conn, err error) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		c.logger.InfoContext(ctx, "invalid websocket message", "errors", validationErrors)
	case errors.Is(err, wsrouter.ErrUnknownMessageType),
		errors.Is(err, wsrouter.ErrInvalidPayload),
		errors.Is(err, errNotJoined),
		errors.Is(err, room.ErrUnauthorized),
		errors.Is(err, room.ErrNotJoined),
		errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrMembersLimitReached),
		errors.Is(err, room.ErrPlaylistLimitReached),
		errors.Is(err, room.ErrRelayNotFound),
		errors.Is(err, room.ErrTargetUnreachable):
		c.logger.InfoContext(ctx, "websocket message rejected", "error", err)
	default:
		c.logger.WarnContext(ctx, "failed to handle websocket message", "error", err)
	}
}
