package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc"
)

type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeAllExcept
	scopeIdentity
	scopeChannel
)

type scope struct {
	kind   scopeKind
	target string
}

func toAll() scope { return scope{kind: scopeAll} }
func toAllExcept(channelId string) scope { return scope{kind: scopeAllExcept, target: channelId} }
func toIdentity(identity string) scope { return scope{kind: scopeIdentity, target: identity} }
func toChannel(channelId string) scope { return scope{kind: scopeChannel, target: channelId} }

// dispatch delivers one event to the channels selected by sc. Unresolvable
// targets and failed writes are dropped; targeted sends report them as
// ErrTargetUnreachable so callers may react.
func (s service) dispatch(ctx context.Context, roomId string, sc scope, eventType string, payload any) error {
	event := Event{
		Type:    eventType,
		Payload: payload,
	}

	switch sc.kind {
	case scopeIdentity:
		channelId, err := s.bindingRepo.GetChannelId(roomId, sc.target)
		if err != nil {
			s.logger.DebugContext(ctx, "target identity unbound", "identity", sc.target, "event", eventType)
			return fmt.Errorf("identity %s: %w", sc.target, ErrTargetUnreachable)
		}

		return s.send(ctx, channelId, event)
	case scopeChannel:
		return s.send(ctx, sc.target, event)
	}

	channelIds, err := s.roomChannels(ctx, roomId)
	if err != nil {
		return err
	}

	var wg conc.WaitGroup
	for _, channelId := range channelIds {
		channelId := channelId
		if sc.kind == scopeAllExcept && channelId == sc.target {
			continue
		}

		wg.Go(func() {
			//nolint:errcheck
			s.send(ctx, channelId, event)
		})
	}
	wg.Wait()

	return nil
}

func (s service) send(ctx context.Context, channelId string, event Event) error {
	if err := s.sender.Send(channelId, &event); err != nil {
		s.logger.DebugContext(ctx, "dropped event", "channel_id", channelId, "event", event.Type, "error", err)
		return fmt.Errorf("channel %s: %w", channelId, errors.Join(ErrTargetUnreachable, err))
	}

	return nil
}

func (s service) roomChannels(ctx context.Context, roomId string) ([]string, error) {
	participants, err := s.roomRepo.GetParticipants(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	channelIds := make([]string, 0, len(participants))
	for _, p := range participants {
		channelId, err := s.bindingRepo.GetChannelId(roomId, p.Id)
		if err != nil {
			continue
		}

		channelIds = append(channelIds, channelId)
	}

	return channelIds, nil
}
