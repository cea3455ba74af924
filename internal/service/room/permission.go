package room

import (
	"context"
	"fmt"
	"slices"

	"github.com/sharetube/watchparty/internal/repository/room"
)

type action string

const (
	actionChangeVideo     action = "change-video"
	actionSyncPlayback    action = "sync-playback"
	actionGrantControl    action = "grant-control"
	actionSendMessage     action = "send-message"
	actionRaiseHand       action = "raise-hand"
	actionAddToPlaylist   action = "add-to-playlist"
	actionRequestHostTime action = "request-host-time"
)

const (
	denyReasonNotAllowed = "not-allowed"
	denyReasonNotHost    = "not-host"
)

func authorize(r room.Room, identity string, a action) bool {
	switch a {
	case actionChangeVideo, actionSyncPlayback:
		return slices.Contains(r.AllowedIds, identity)
	case actionGrantControl:
		return resolveRole(r, identity) == RoleHost
	default:
		return true
	}
}

// deny logs a refused action and, when enabled, tells the sender about it.
func (s service) deny(ctx context.Context, channelId string, a action, reason string) error {
	s.logger.InfoContext(ctx, "action denied", "action", a, "reason", reason)
	if s.ackDenials {
		//nolint:errcheck
		s.dispatch(ctx, "", toChannel(channelId), EventActionDenied, &ActionDeniedPayload{
			Action: string(a),
			Reason: reason,
		})
	}

	return fmt.Errorf("%s: %w", a, ErrUnauthorized)
}

// grantPromotion adds targetId to the allowed set and drops its pending
// request. Repeated grants leave the set unchanged.
func (s service) grantPromotion(ctx context.Context, r room.Room, callerId, targetId string) (bool, error) {
	if resolveRole(r, callerId) != RoleHost {
		return false, fmt.Errorf("grant promotion: %w", ErrUnauthorized)
	}

	added, err := s.roomRepo.AddAllowedId(ctx, &room.AddAllowedIdParams{
		RoomId: r.Id,
		Id:     targetId,
	})
	if err != nil {
		return false, fmt.Errorf("failed to add allowed id: %w", err)
	}

	if _, err := s.roomRepo.RemoveControlRequest(ctx, &room.RemoveControlRequestParams{
		RoomId:      r.Id,
		RequesterId: targetId,
	}); err != nil {
		return false, fmt.Errorf("failed to remove control request: %w", err)
	}

	return added, nil
}
