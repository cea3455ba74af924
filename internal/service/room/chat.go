package room

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type SendMessageParams struct {
	RoomId    string
	ChannelId string
	User      string
	Msg       string
}

func (p *SendMessageParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.User, userRule...),
		validation.Field(&p.Msg, messageRule...),
	)
}

// SendMessage broadcasts a chat message to the whole room, the sender included.
func (s service) SendMessage(ctx context.Context, params *SendMessageParams) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid message params: %w", err)
	}

	unlock := s.locks.Lock(params.RoomId)
	defer unlock()

	current, identity, err := s.getSender(ctx, params.RoomId, params.ChannelId)
	if err != nil {
		return err
	}

	if !authorize(current, identity, actionSendMessage) {
		return s.deny(ctx, params.ChannelId, actionSendMessage, denyReasonNotAllowed)
	}

	user := params.User
	if user == "" {
		user = s.displayName(ctx, params.RoomId, identity, identity)
	}

	return s.dispatch(ctx, params.RoomId, toAll(), EventReceiveMessage, &ChatPayload{
		User: user,
		Msg:  params.Msg,
	})
}
