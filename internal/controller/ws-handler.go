package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/service/room"
)

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

type JoinRoomInput struct {
	RoomId      string `json:"room_id" validate:"required,max=64"`
	UserId      string `json:"user_id" validate:"required,max=128"`
	DisplayName string `json:"display_name" validate:"required,max=32"`
}

func (c controller) handleJoinRoom(ctx context.Context, _ *websocket.Conn, input JoinRoomInput) error {
	sess := c.getSessionFromCtx(ctx)
	channelId := c.getChannelIdFromCtx(ctx)

	// a channel belongs to one room at a time
	if sess.roomId != "" && sess.roomId != input.RoomId {
		if _, err := c.roomService.DisconnectMember(ctx, &room.DisconnectMemberParams{
			RoomId:    sess.roomId,
			ChannelId: channelId,
		}); err != nil {
			c.logger.WarnContext(ctx, "failed to leave previous room", "error", err)
		}
		sess.roomId = ""
	}

	if _, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId:      input.RoomId,
		ChannelId:   channelId,
		Identity:    input.UserId,
		DisplayName: input.DisplayName,
	}); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}
	sess.roomId = input.RoomId

	return nil
}

type VideoInput struct {
	VideoId string `json:"video_id" validate:"required,len=11"`
	Title   string `json:"title" validate:"max=256"`
}

func (c controller) handleChangeVideo(ctx context.Context, _ *websocket.Conn, input VideoInput) error {
	if err := c.roomService.ChangeVideo(ctx, &room.ChangeVideoParams{
		RoomId:    c.getRoomIdFromCtx(ctx),
		ChannelId: c.getChannelIdFromCtx(ctx),
		VideoId:   input.VideoId,
		Title:     input.Title,
	}); err != nil {
		return fmt.Errorf("failed to change video: %w", err)
	}

	return nil
}

func (c controller) handleAddToPlaylist(ctx context.Context, _ *websocket.Conn, input VideoInput) error {
	if _, err := c.roomService.AddVideo(ctx, &room.AddVideoParams{
		RoomId:    c.getRoomIdFromCtx(ctx),
		ChannelId: c.getChannelIdFromCtx(ctx),
		VideoId:   input.VideoId,
		Title:     input.Title,
	}); err != nil {
		return fmt.Errorf("failed to add video: %w", err)
	}

	return nil
}

func (c controller) handleSyncAction(ctx context.Context, _ *websocket.Conn, input json.RawMessage) error {
	if err := c.roomService.SyncAction(ctx, &room.SyncActionParams{
		RoomId:    c.getRoomIdFromCtx(ctx),
		ChannelId: c.getChannelIdFromCtx(ctx),
		Payload:   input,
	}); err != nil {
		return fmt.Errorf("failed to sync action: %w", err)
	}

	return nil
}

func (c controller) handleRequestHostTime(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	if _, err := c.roomService.RequestHostTime(ctx, &room.RequestHostTimeParams{
		RoomId:    c.getRoomIdFromCtx(ctx),
		ChannelId: c.getChannelIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to request host time: %w", err)
	}

	return nil
}

type HostSendsTimeInput struct {
	RequestId string  `json:"request_id" validate:"required,uuid4"`
	Time      float64 `json:"time" validate:"gte=0"`
}

func (c controller) handleHostSendsTime(ctx context.Context, _ *websocket.Conn, input HostSendsTimeInput) error {
	if err := c.roomService.HostSendsTime(ctx, &room.HostSendsTimeParams{
		RoomId:    c.getRoomIdFromCtx(ctx),
		ChannelId: c.getChannelIdFromCtx(ctx),
		RequestId: input.RequestId,
		Time:      input.Time,
	}); err != nil {
		return fmt.Errorf("failed to relay host time: %w", err)
	}

	return nil
}

type SendCurrentStateInput struct {
	RequestId string          `json:"request_id" validate:"required,uuid4"`
	State     json.RawMessage `json:"state"`
}

func (c controller) handleSendCurrentState(ctx context.Context, _ *websocket.Conn, input SendCurrentStateInput) error {
	if err := c.roomService.SendCurrentState(ctx, &room.SendCurrentStateParams{
		RoomId:    c.getRoomIdFromCtx(ctx),
		ChannelId: c.getChannelIdFromCtx(ctx),
		RequestId: input.RequestId,
		State:     input.State,
	}); err != nil {
		return fmt.Errorf("failed to relay state: %w", err)
	}

	return nil
}

func (c controller) handleRaiseHand(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	if _, err := c.roomService.RaiseHand(ctx, &room.RaiseHandParams{
		RoomId:    c.getRoomIdFromCtx(ctx),
		ChannelId: c.getChannelIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to raise hand: %w", err)
	}

	return nil
}

type GrantControlInput struct {
	TargetId string `json:"target_id" validate:"required,max=128"`
	Action   string `json:"action" validate:"required,oneof=accept deny"`
}

func (c controller) handleGrantControl(ctx context.Context, _ *websocket.Conn, input GrantControlInput) error {
	if _, err := c.roomService.ResolveRequest(ctx, &room.ResolveRequestParams{
		RoomId:    c.getRoomIdFromCtx(ctx),
		ChannelId: c.getChannelIdFromCtx(ctx),
		TargetId:  input.TargetId,
		Accept:    input.Action == "accept",
	}); err != nil {
		return fmt.Errorf("failed to resolve control request: %w", err)
	}

	return nil
}

type SendMessageInput struct {
	User string `json:"user" validate:"max=32"`
	Msg  string `json:"msg" validate:"required,max=1000"`
}

func (c controller) handleSendMessage(ctx context.Context, _ *websocket.Conn, input SendMessageInput) error {
	if err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		RoomId:    c.getRoomIdFromCtx(ctx),
		ChannelId: c.getChannelIdFromCtx(ctx),
		User:      input.User,
		Msg:       input.Msg,
	}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
