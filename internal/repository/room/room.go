package room

// WaitingTitle is the now playing title of a room that has no video yet.
const WaitingTitle = "Waiting for video..."

type Room struct {
	Id              string
	HostId          string
	AllowedIds      []string
	NowPlayingTitle string
}

type SetHostParams struct {
	RoomId string
	HostId string
}

type SetNowPlayingTitleParams struct {
	RoomId string
	Title  string
}

type AddAllowedIdParams struct {
	RoomId string
	Id     string
}
