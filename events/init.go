package events

import "github.com/r3labs/sse/v2"

// PlaybackStream carries a message every time the recorded track changes.
// Clients subscribe with GET /events?stream=playback.
const PlaybackStream = "playback"

func NewServer() *sse.Server {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(PlaybackStream)
	return server
}
