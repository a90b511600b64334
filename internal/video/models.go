package video

import "time"

// Artifact describes a rendered video file on local disk.
type Artifact struct {
	Path            string    `json:"path"`
	DurationSeconds float64   `json:"duration_seconds"`
	SizeBytes       int64     `json:"size_bytes"`
	SHA256          string    `json:"sha256"`
	CreatedAt       time.Time `json:"created_at"`
}
