package room

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrRequestNotFound     = errors.New("control request not found")
)
