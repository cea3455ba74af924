package redis

import (
	"context"
	"fmt"

	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getRequestListKey(roomId string) string {
	return "room:" + roomId + ":requests"
}

func (r repo) getRequestKey(roomId, requesterId string) string {
	return "room:" + roomId + ":request:" + requesterId
}

func (r repo) AddControlRequest(ctx context.Context, params *room.AddControlRequestParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.checkRoomExists(ctx, params.RoomId); err != nil {
		return false, err
	}

	listKey := r.getRequestListKey(params.RoomId)
	added, err := r.addIfNotExistsScript.Run(ctx, r.rc, []string{listKey}, params.RequesterId).Int()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, fmt.Errorf("failed to add request to list: %w", err)
	}

	if added == 0 {
		return false, nil
	}

	requestKey := r.getRequestKey(params.RoomId, params.RequesterId)
	pipe := r.rc.TxPipeline()
	r.hSetStruct(ctx, pipe, requestKey, room.ControlRequest{
		RequesterId:   params.RequesterId,
		RequesterName: params.RequesterName,
	})
	r.expire(ctx, pipe, requestKey, listKey)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, fmt.Errorf("failed to set request: %w", err)
	}

	return true, nil
}

func (r repo) RemoveControlRequest(ctx context.Context, params *room.RemoveControlRequestParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.checkRoomExists(ctx, params.RoomId); err != nil {
		return false, err
	}

	pipe := r.rc.TxPipeline()
	remCmd := pipe.ZRem(ctx, r.getRequestListKey(params.RoomId), params.RequesterId)
	pipe.Del(ctx, r.getRequestKey(params.RoomId, params.RequesterId))

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, fmt.Errorf("failed to remove request: %w", err)
	}

	return remCmd.Val() > 0, nil
}

func (r repo) GetControlRequests(ctx context.Context, roomId string) ([]room.ControlRequest, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	if err := r.checkRoomExists(ctx, roomId); err != nil {
		return nil, err
	}

	listKey := r.getRequestListKey(roomId)
	ids, err := r.rc.ZRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get request ids: %w", err)
	}

	requests := make([]room.ControlRequest, 0, len(ids))
	for _, id := range ids {
		requestKey := r.getRequestKey(roomId, id)
		var request room.ControlRequest
		if err := r.rc.HGetAll(ctx, requestKey).Scan(&request); err != nil {
			return nil, fmt.Errorf("failed to get request: %w", err)
		}

		if request.RequesterId == "" {
			continue
		}

		r.expire(ctx, r.rc, requestKey)
		requests = append(requests, request)
	}

	r.expire(ctx, r.rc, listKey)

	return requests, nil
}
