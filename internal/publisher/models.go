package publisher

import "time"

// Post records a published piece of media.
type Post struct {
	MediaID     string    `json:"media_id"`
	ContainerID string    `json:"container_id"`
	Caption     string    `json:"caption"`
	PublishedAt time.Time `json:"published_at"`
}

// Container status values reported by the graph API while a video is
// ingested.
const (
	containerStatusFinished   = "FINISHED"
	containerStatusError      = "ERROR"
	containerStatusInProgress = "IN_PROGRESS"
)
