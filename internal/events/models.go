package events

import (
	"time"

	"mindcast/pkg/domain"
)

// Type enumerates pipeline event types.
type Type string

const (
	TypeRunStarted     Type = "run_started"
	TypeStageStarted   Type = "stage_started"
	TypeStageSucceeded Type = "stage_succeeded"
	TypeStageFailed    Type = "stage_failed"
	TypeRunSucceeded   Type = "run_succeeded"
	TypeRunFailed      Type = "run_failed"
	TypePostPublished  Type = "post_published"
)

// Event is emitted on every run and stage transition. Keep it
// transport-agnostic so sinks can fan out; Detail must never contain
// secrets or raw API payloads.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	RunID     domain.RunID      `json:"run_id"`
	Stage     domain.Stage      `json:"stage,omitempty"`
	Type      Type              `json:"type"`
	Detail    map[string]string `json:"detail,omitempty"`
}
