package room

type ControlRequest struct {
	RequesterId   string `redis:"requester_id"`
	RequesterName string `redis:"requester_name"`
}

type AddControlRequestParams struct {
	RoomId        string
	RequesterId   string
	RequesterName string
}

type RemoveControlRequestParams struct {
	RoomId      string
	RequesterId string
}
