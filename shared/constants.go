package shared

const (
	CATEGORY_TRACK = "track"

	HEADER_REQUEST_ID = "X-Request-ID"

	USER_AGENT = "mediabridge/1.0 <github.com/marcus-crane/mediabridge>"
)
