package room

import "encoding/json"

type Role string

const (
	RoleHost   Role = "host"
	RoleCoHost Role = "co-host"
	RoleViewer Role = "viewer"
)

const (
	EventRoleUpdate              = "role-update"
	EventUpdateUserList          = "update-user-list"
	EventUpdatePlaylist          = "update-playlist"
	EventUpdateTitle             = "update-title"
	EventChangeVideo             = "change-video"
	EventProvideTimeForRequester = "provide-time-for-requester"
	EventJumpToLive              = "jump-to-live"
	EventGetCurrentState         = "get-current-state"
	EventSyncStateOnJoin         = "sync-state-on-join"
	EventControlRequest          = "control-request"
	EventUpdateRequests          = "update-requests"
	EventReceiveMessage          = "receive-message"
	EventSyncAction              = "sync-action"
	EventHostUnavailable         = "host-unavailable"
	EventActionDenied            = "action-denied"
)

// SystemUser is the chat author of server generated messages.
const SystemUser = "System"

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type Participant struct {
	Id          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type Video struct {
	Id           string `json:"id"`
	VideoId      string `json:"video_id"`
	Title        string `json:"title"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

type ControlRequest struct {
	RequesterId   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
}

type RoleUpdatePayload struct {
	Role Role `json:"role"`
}

type UserListPayload struct {
	Count        int           `json:"count"`
	Participants []Participant `json:"participants"`
}

type PlaylistPayload struct {
	Playlist []Video `json:"playlist"`
}

type TitlePayload struct {
	Title string `json:"title"`
}

type ChangeVideoPayload struct {
	VideoId string `json:"video_id"`
	Title   string `json:"title"`
}

type RelayRequestPayload struct {
	RequestId string `json:"request_id"`
}

type JumpToLivePayload struct {
	RequestId string  `json:"request_id"`
	Time      float64 `json:"time"`
}

type SyncStatePayload struct {
	RequestId string          `json:"request_id"`
	State     json.RawMessage `json:"state"`
}

type ControlRequestPayload struct {
	Request ControlRequest `json:"request"`
}

type RequestsPayload struct {
	Requests []ControlRequest `json:"requests"`
}

type ChatPayload struct {
	User string `json:"user"`
	Msg  string `json:"msg"`
}

type HostUnavailablePayload struct {
	RequestId string `json:"request_id"`
	Reason    string `json:"reason"`
}

type ActionDeniedPayload struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}
