package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
)

// requestState asks the host for a snapshot on behalf of a joining viewer.
// Without a reachable host the request is dropped.
func (s service) requestState(ctx context.Context, current room.Room, requesterChannelId string) {
	hostChannelId, err := s.bindingRepo.GetChannelId(current.Id, current.HostId)
	if err != nil {
		s.logger.DebugContext(ctx, "host unbound, skipping late join sync")
		return
	}

	rl := s.relays.start(relayState, current.Id, current.HostId, requesterChannelId, s.relayTimedOut)
	if err := s.dispatch(ctx, current.Id, toChannel(hostChannelId), EventGetCurrentState, &RelayRequestPayload{
		RequestId: rl.id,
	}); err != nil {
		s.relays.take(rl.id, func(*relay) bool { return true })
	}
}

type RequestHostTimeParams struct {
	RoomId    string
	ChannelId string
}

type RequestHostTimeResponse struct {
	RequestId string
}

// RequestHostTime asks the host for its playback position on behalf of the
// sender. An unreachable host fails the request right away.
func (s service) RequestHostTime(ctx context.Context, params *RequestHostTimeParams) (RequestHostTimeResponse, error) {
	unlock := s.locks.Lock(params.RoomId)
	defer unlock()

	current, identity, err := s.getSender(ctx, params.RoomId, params.ChannelId)
	if err != nil {
		return RequestHostTimeResponse{}, err
	}

	if !authorize(current, identity, actionRequestHostTime) {
		return RequestHostTimeResponse{}, s.deny(ctx, params.ChannelId, actionRequestHostTime, denyReasonNotAllowed)
	}

	hostChannelId, err := s.bindingRepo.GetChannelId(current.Id, current.HostId)
	if err != nil {
		requestId := uuid.NewString()
		s.hostUnavailable(ctx, params.ChannelId, requestId, reasonHostOffline)
		return RequestHostTimeResponse{RequestId: requestId}, fmt.Errorf("host of %s: %w", params.RoomId, ErrTargetUnreachable)
	}

	rl := s.relays.start(relayHostTime, current.Id, current.HostId, params.ChannelId, s.relayTimedOut)
	if err := s.dispatch(ctx, current.Id, toChannel(hostChannelId), EventProvideTimeForRequester, &RelayRequestPayload{
		RequestId: rl.id,
	}); err != nil {
		s.relays.take(rl.id, func(*relay) bool { return true })
		s.hostUnavailable(ctx, params.ChannelId, rl.id, reasonHostOffline)
		return RequestHostTimeResponse{RequestId: rl.id}, err
	}

	return RequestHostTimeResponse{RequestId: rl.id}, nil
}

type HostSendsTimeParams struct {
	RoomId    string
	ChannelId string
	RequestId string
	Time      float64
}

func (p *HostSendsTimeParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.RequestId, requestIdRule...),
		validation.Field(&p.Time, timeRule...),
	)
}

// HostSendsTime completes a host time relay with the host's position.
func (s service) HostSendsTime(ctx context.Context, params *HostSendsTimeParams) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid host time params: %w", err)
	}

	rl, err := s.takeHostRelay(params.RoomId, params.ChannelId, params.RequestId, relayHostTime)
	if err != nil {
		return err
	}

	return s.dispatch(ctx, params.RoomId, toChannel(rl.requesterChannelId), EventJumpToLive, &JumpToLivePayload{
		RequestId: rl.id,
		Time:      params.Time,
	})
}

type SendCurrentStateParams struct {
	RoomId    string
	ChannelId string
	RequestId string
	State     json.RawMessage
}

func (p *SendCurrentStateParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.RequestId, requestIdRule...),
	)
}

// SendCurrentState completes a late join relay with the host's snapshot.
func (s service) SendCurrentState(ctx context.Context, params *SendCurrentStateParams) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid state params: %w", err)
	}

	rl, err := s.takeHostRelay(params.RoomId, params.ChannelId, params.RequestId, relayState)
	if err != nil {
		return err
	}

	state := params.State
	if len(state) == 0 {
		state = json.RawMessage("null")
	}

	return s.dispatch(ctx, params.RoomId, toChannel(rl.requesterChannelId), EventSyncStateOnJoin, &SyncStatePayload{
		RequestId: rl.id,
		State:     state,
	})
}

// takeHostRelay consumes a pending relay only when the responder is the host
// the relay was sent to.
func (s service) takeHostRelay(roomId, channelId, requestId string, kind relayKind) (*relay, error) {
	identity, err := s.bindingRepo.GetIdentity(roomId, channelId)
	if err != nil {
		return nil, ErrNotJoined
	}

	rl, ok := s.relays.take(requestId, func(rl *relay) bool {
		return rl.kind == kind && rl.roomId == roomId && rl.hostId == identity
	})
	if !ok {
		return nil, fmt.Errorf("request %s: %w", requestId, ErrRelayNotFound)
	}

	return rl, nil
}

func (s service) relayTimedOut(rl *relay) {
	ctx := ctxlogger.AppendCtx(context.Background(), slog.String("room_id", rl.roomId))
	s.logger.InfoContext(ctx, "relay timed out", "request_id", rl.id, "kind", rl.kind)
	s.hostUnavailable(ctx, rl.requesterChannelId, rl.id, reasonTimeout)
}

func (s service) failRelays(ctx context.Context, match func(*relay) bool, reason string) {
	for _, rl := range s.relays.takeAll(match) {
		s.hostUnavailable(ctx, rl.requesterChannelId, rl.id, reason)
	}
}

func (s service) hostUnavailable(ctx context.Context, channelId, requestId, reason string) {
	//nolint:errcheck
	s.dispatch(ctx, "", toChannel(channelId), EventHostUnavailable, &HostUnavailablePayload{
		RequestId: requestId,
		Reason:    reason,
	})
}
