package room

type Participant struct {
	Id          string `redis:"id"`
	DisplayName string `redis:"display_name"`
}

type SetParticipantParams struct {
	RoomId      string
	Id          string
	DisplayName string
}

type RemoveParticipantParams struct {
	RoomId string
	Id     string
}
