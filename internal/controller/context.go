package controller

import "context"

type contextKey int

const (
	channelIdCtxKey contextKey = iota
	sessionCtxKey
)

// session is the per connection state. It is only touched by the goroutine
// reading the connection.
type session struct {
	roomId string
}

func (c controller) getChannelIdFromCtx(ctx context.Context) string {
	channelId, ok := ctx.Value(channelIdCtxKey).(string)
	if !ok {
		return ""
	}

	return channelId
}

func (c controller) getSessionFromCtx(ctx context.Context) *session {
	s, ok := ctx.Value(sessionCtxKey).(*session)
	if !ok {
		return &session{}
	}

	return s
}

func (c controller) getRoomIdFromCtx(ctx context.Context) string {
	return c.getSessionFromCtx(ctx).roomId
}
