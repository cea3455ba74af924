package room

import (
	"context"
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/watchparty/internal/repository/room"
)

type RaiseHandParams struct {
	RoomId    string
	ChannelId string
}

type RaiseHandResponse struct {
	Added bool
}

// RaiseHand queues a control request for the sender and notifies the host.
// Allowed identities and already pending requesters are ignored.
func (s service) RaiseHand(ctx context.Context, params *RaiseHandParams) (RaiseHandResponse, error) {
	unlock := s.locks.Lock(params.RoomId)
	defer unlock()

	current, identity, err := s.getSender(ctx, params.RoomId, params.ChannelId)
	if err != nil {
		return RaiseHandResponse{}, err
	}

	if !authorize(current, identity, actionRaiseHand) {
		return RaiseHandResponse{}, s.deny(ctx, params.ChannelId, actionRaiseHand, denyReasonNotAllowed)
	}

	if slices.Contains(current.AllowedIds, identity) {
		return RaiseHandResponse{}, nil
	}

	request := ControlRequest{
		RequesterId:   identity,
		RequesterName: s.displayName(ctx, params.RoomId, identity, identity),
	}
	added, err := s.roomRepo.AddControlRequest(ctx, &room.AddControlRequestParams{
		RoomId:        params.RoomId,
		RequesterId:   request.RequesterId,
		RequesterName: request.RequesterName,
	})
	if err != nil {
		return RaiseHandResponse{}, fmt.Errorf("failed to add control request: %w", err)
	}
	if !added {
		return RaiseHandResponse{}, nil
	}

	//nolint:errcheck
	s.dispatch(ctx, params.RoomId, toIdentity(current.HostId), EventControlRequest, &ControlRequestPayload{
		Request: request,
	})

	if err := s.sendRequestsToHost(ctx, current); err != nil {
		return RaiseHandResponse{}, err
	}

	return RaiseHandResponse{Added: true}, nil
}

type ResolveRequestParams struct {
	RoomId    string
	ChannelId string
	TargetId  string
	Accept    bool
}

func (p *ResolveRequestParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.TargetId, identityRule...),
	)
}

type ResolveRequestResponse struct {
	Promoted bool
}

// ResolveRequest accepts or denies the pending request of TargetId. Only the
// host may resolve requests.
func (s service) ResolveRequest(ctx context.Context, params *ResolveRequestParams) (ResolveRequestResponse, error) {
	if err := params.Validate(); err != nil {
		return ResolveRequestResponse{}, fmt.Errorf("invalid resolve params: %w", err)
	}

	unlock := s.locks.Lock(params.RoomId)
	defer unlock()

	current, identity, err := s.getSender(ctx, params.RoomId, params.ChannelId)
	if err != nil {
		return ResolveRequestResponse{}, err
	}

	if !authorize(current, identity, actionGrantControl) {
		return ResolveRequestResponse{}, s.deny(ctx, params.ChannelId, actionGrantControl, denyReasonNotHost)
	}

	var promoted bool
	if params.Accept {
		promoted, err = s.grantPromotion(ctx, current, identity, params.TargetId)
		if err != nil {
			return ResolveRequestResponse{}, err
		}

		current, err = s.roomRepo.GetRoom(ctx, params.RoomId)
		if err != nil {
			return ResolveRequestResponse{}, fmt.Errorf("failed to get room: %w", err)
		}

		//nolint:errcheck
		s.dispatch(ctx, params.RoomId, toIdentity(params.TargetId), EventRoleUpdate, &RoleUpdatePayload{
			Role: resolveRole(current, params.TargetId),
		})
	} else {
		if _, err := s.roomRepo.RemoveControlRequest(ctx, &room.RemoveControlRequestParams{
			RoomId:      params.RoomId,
			RequesterId: params.TargetId,
		}); err != nil {
			return ResolveRequestResponse{}, fmt.Errorf("failed to remove control request: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "control request resolved", "target", params.TargetId, "accept", params.Accept, "promoted", promoted)

	if err := s.sendRequestsToHost(ctx, current); err != nil {
		return ResolveRequestResponse{}, err
	}

	return ResolveRequestResponse{Promoted: promoted}, nil
}

func (s service) getControlRequests(ctx context.Context, roomId string) ([]ControlRequest, error) {
	requests, err := s.roomRepo.GetControlRequests(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get control requests: %w", err)
	}

	res := make([]ControlRequest, 0, len(requests))
	for _, r := range requests {
		res = append(res, ControlRequest{
			RequesterId:   r.RequesterId,
			RequesterName: r.RequesterName,
		})
	}

	return res, nil
}

// sendRequestsToHost delivers the pending list to the host. An unbound host
// misses the update and gets the list again on its next join.
func (s service) sendRequestsToHost(ctx context.Context, current room.Room) error {
	requests, err := s.getControlRequests(ctx, current.Id)
	if err != nil {
		return err
	}

	//nolint:errcheck
	s.dispatch(ctx, current.Id, toIdentity(current.HostId), EventUpdateRequests, &RequestsPayload{
		Requests: requests,
	})

	return nil
}
