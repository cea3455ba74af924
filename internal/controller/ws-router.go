package controller

import (
	"encoding/json"

	"github.com/sharetube/watchparty/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.SetValidator(c.validate.ValidateStruct)
	mux.SetErrorHandler(c.handleWSError)
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw(), c.joinedWSMw())

	wsrouter.Handle[EmptyInput](mux, "alive", c.handleAlive)
	wsrouter.Handle[JoinRoomInput](mux, "join-room", c.handleJoinRoom)

	// playback
	wsrouter.Handle[VideoInput](mux, "change-video", c.handleChangeVideo)
	wsrouter.Handle[VideoInput](mux, "add-to-playlist", c.handleAddToPlaylist)
	wsrouter.Handle[json.RawMessage](mux, "sync-action", c.handleSyncAction)

	// sync
	wsrouter.Handle[EmptyInput](mux, "request-host-time", c.handleRequestHostTime)
	wsrouter.Handle[HostSendsTimeInput](mux, "host-sends-time", c.handleHostSendsTime)
	wsrouter.Handle[SendCurrentStateInput](mux, "send-current-state", c.handleSendCurrentState)

	// control
	wsrouter.Handle[EmptyInput](mux, "raise-hand", c.handleRaiseHand)
	wsrouter.Handle[EmptyInput](mux, "request-control", c.handleRaiseHand)
	wsrouter.Handle[GrantControlInput](mux, "grant-control", c.handleGrantControl)

	// chat
	wsrouter.Handle[SendMessageInput](mux, "send-message", c.handleSendMessage)

	return mux
}
