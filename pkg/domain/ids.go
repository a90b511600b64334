package domain

import (
	"github.com/google/uuid"

	dErrors "mindcast/pkg/domain-errors"
)

// Typed IDs prevent cross-entity mixups at compile time. Construct via the
// New*/Parse* helpers; direct casting bypasses validation.
type (
	// RunID identifies one pipeline run (one attempt to produce and publish
	// the daily post).
	RunID uuid.UUID

	// TopicID identifies a selected topic in the coverage history.
	TopicID uuid.UUID
)

// NewRunID generates a fresh run ID.
func NewRunID() RunID { return RunID(uuid.New()) }

// NewTopicID generates a fresh topic ID.
func NewTopicID() TopicID { return TopicID(uuid.New()) }

func (id RunID) String() string   { return uuid.UUID(id).String() }
func (id TopicID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the nil UUID.
func (id RunID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id TopicID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps IDs as canonical UUID strings in JSON; without it a
// defined type over uuid.UUID would encode as a byte array.
func (id RunID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id TopicID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *RunID) UnmarshalText(b []byte) error {
	parsed, err := ParseRunID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *TopicID) UnmarshalText(b []byte) error {
	parsed, err := ParseTopicID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseRunID constructs a RunID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed, or
// the nil UUID; no other errors are expected.
func ParseRunID(s string) (RunID, error) {
	u, err := parseUUID(s, "run id")
	if err != nil {
		return RunID{}, err
	}
	return RunID(u), nil
}

// ParseTopicID constructs a TopicID from external input.
func ParseTopicID(s string) (TopicID, error) {
	u, err := parseUUID(s, "topic id")
	if err != nil {
		return TopicID{}, err
	}
	return TopicID(u), nil
}

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be the nil uuid")
	}
	return u, nil
}
