package redis

import (
	"context"
	"fmt"

	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getParticipantListKey(roomId string) string {
	return "room:" + roomId + ":participants"
}

func (r repo) getParticipantKey(roomId, participantId string) string {
	return "room:" + roomId + ":participant:" + participantId
}

func (r repo) SetParticipant(ctx context.Context, params *room.SetParticipantParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.checkRoomExists(ctx, params.RoomId); err != nil {
		return err
	}

	listKey := r.getParticipantListKey(params.RoomId)
	if err := r.addIfNotExistsScript.Run(ctx, r.rc, []string{listKey}, params.Id).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to add participant to list: %w", err)
	}

	participantKey := r.getParticipantKey(params.RoomId, params.Id)
	pipe := r.rc.TxPipeline()
	r.hSetStruct(ctx, pipe, participantKey, room.Participant{
		Id:          params.Id,
		DisplayName: params.DisplayName,
	})
	r.expire(ctx, pipe, participantKey, listKey)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to set participant: %w", err)
	}

	return nil
}

func (r repo) RemoveParticipant(ctx context.Context, params *room.RemoveParticipantParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.checkRoomExists(ctx, params.RoomId); err != nil {
		return false, err
	}

	pipe := r.rc.TxPipeline()
	remCmd := pipe.ZRem(ctx, r.getParticipantListKey(params.RoomId), params.Id)
	pipe.Del(ctx, r.getParticipantKey(params.RoomId, params.Id))

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, fmt.Errorf("failed to remove participant: %w", err)
	}

	return remCmd.Val() > 0, nil
}

func (r repo) GetParticipants(ctx context.Context, roomId string) ([]room.Participant, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	if err := r.checkRoomExists(ctx, roomId); err != nil {
		return nil, err
	}

	listKey := r.getParticipantListKey(roomId)
	ids, err := r.rc.ZRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get participant ids: %w", err)
	}

	participants := make([]room.Participant, 0, len(ids))
	for _, id := range ids {
		participantKey := r.getParticipantKey(roomId, id)
		var participant room.Participant
		if err := r.rc.HGetAll(ctx, participantKey).Scan(&participant); err != nil {
			return nil, fmt.Errorf("failed to get participant: %w", err)
		}

		if participant.Id == "" {
			r.logger.WarnContext(ctx, "participant listed without data", "room_id", roomId, "participant_id", id)
			continue
		}

		r.expire(ctx, r.rc, participantKey)
		participants = append(participants, participant)
	}

	r.expire(ctx, r.rc, listKey)

	return participants, nil
}
