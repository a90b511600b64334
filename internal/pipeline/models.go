package pipeline

import (
	"time"

	"mindcast/internal/publisher"
	"mindcast/internal/script"
	"mindcast/internal/trends"
	"mindcast/internal/video"
	"mindcast/pkg/domain"
)

// StageRecord tracks one stage's outcome within a run.
type StageRecord struct {
	Stage      domain.Stage     `json:"stage"`
	Status     domain.RunStatus `json:"status"`
	Error      string           `json:"error,omitempty"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

// Run is one execution of the daily pipeline. Stage outputs (topic, script,
// artifact, post) are persisted as they land so a failed run resumes from
// the first incomplete stage instead of repeating finished work.
type Run struct {
	ID        domain.RunID     `json:"id"`
	Date      string           `json:"date"`
	Status    domain.RunStatus `json:"status"`
	Stages    []StageRecord    `json:"stages"`
	Topic     *trends.Topic    `json:"topic,omitempty"`
	Script    *script.Script   `json:"script,omitempty"`
	Artifact  *video.Artifact  `json:"artifact,omitempty"`
	Post      *publisher.Post  `json:"post,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewRun constructs a pending run for the given date (YYYY-MM-DD) with all
// stages pending.
func NewRun(date string, now time.Time) *Run {
	stages := make([]StageRecord, 0, len(domain.Stages()))
	for _, stage := range domain.Stages() {
		stages = append(stages, StageRecord{Stage: stage, Status: domain.StatusPending})
	}
	return &Run{
		ID:        domain.NewRunID(),
		Date:      date,
		Status:    domain.StatusPending,
		Stages:    stages,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StageRecordFor returns a pointer into Stages for the given stage, or nil.
func (r *Run) StageRecordFor(stage domain.Stage) *StageRecord {
	for i := range r.Stages {
		if r.Stages[i].Stage == stage {
			return &r.Stages[i]
		}
	}
	return nil
}

// FirstIncompleteStage returns the earliest stage that has not succeeded.
// The second return is false when every stage succeeded.
func (r *Run) FirstIncompleteStage() (domain.Stage, bool) {
	for _, record := range r.Stages {
		if record.Status != domain.StatusSucceeded {
			return record.Stage, true
		}
	}
	return "", false
}
