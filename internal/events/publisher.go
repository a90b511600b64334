// Package events fans pipeline lifecycle events out to a sink. The publisher
// never blocks pipeline execution: when the buffer is full the event is
// dropped and counted instead.
package events

import (
	"context"
	"log/slog"
	"time"
)

// DroppedCounter counts events lost to a full buffer; the platform metrics
// type satisfies it.
type DroppedCounter interface {
	IncEventsDropped()
}

// Publisher accepts events from domain code and buffers them for the worker.
type Publisher struct {
	inbox   chan Event
	dropped DroppedCounter
	logger  *slog.Logger
}

// NewPublisher constructs a publisher with the given buffer size.
func NewPublisher(buffer int, dropped DroppedCounter, logger *slog.Logger) *Publisher {
	if buffer < 1 {
		buffer = 64
	}
	return &Publisher{
		inbox:   make(chan Event, buffer),
		dropped: dropped,
		logger:  logger,
	}
}

// Emit queues an event without blocking. A zero timestamp is stamped here so
// callers can stay terse.
func (p *Publisher) Emit(_ context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		if p.dropped != nil {
			p.dropped.IncEventsDropped()
		}
		if p.logger != nil {
			p.logger.Warn("event dropped, buffer full",
				"type", event.Type, "run_id", event.RunID.String())
		}
	}
}

// Inbox exposes the channel for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }
