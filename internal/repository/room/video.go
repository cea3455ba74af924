package room

type Video struct {
	Id           string `redis:"id"`
	ExternalId   string `redis:"external_id"`
	Title        string `redis:"title"`
	ThumbnailUrl string `redis:"thumbnail_url"`
}

type AddVideoParams struct {
	RoomId       string
	VideoId      string
	ExternalId   string
	Title        string
	ThumbnailUrl string
}
