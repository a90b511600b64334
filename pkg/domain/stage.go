package domain

import dErrors "mindcast/pkg/domain-errors"

// Stage is a pipeline stage name.
// Invariant: the value must be one of the four pipeline stages, and stages
// always execute in the order listed by Stages().
type Stage string

const (
	StageTrends  Stage = "trends"
	StageScript  Stage = "script"
	StageVideo   Stage = "video"
	StagePublish Stage = "publish"
)

// stageOrder is the single source of truth for stage ordering.
var stageOrder = []Stage{StageTrends, StageScript, StageVideo, StagePublish}

// Stages returns the pipeline stages in execution order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// IsValid reports whether the stage is one of the known pipeline stages.
func (s Stage) IsValid() bool {
	for _, known := range stageOrder {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStage constructs a Stage from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseStage(s string) (Stage, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "stage cannot be empty")
	}
	stage := Stage(s)
	if !stage.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported stage: "+s)
	}
	return stage, nil
}

// RunStatus is the lifecycle status of a pipeline run or a single stage.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
)

// Terminal reports whether no further transitions are expected.
func (s RunStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}
