package events

import (
	"context"
	"log/slog"
)

// Sink receives drained events. Implementations: MemorySink, KafkaSink.
type Sink interface {
	Write(ctx context.Context, event Event) error
	Close() error
}

// Worker consumes events from the publisher inbox and forwards them to a
// sink. Sink errors are logged, not propagated: events are best-effort and
// must never fail a pipeline run.
type Worker struct {
	inbox  <-chan Event
	sink   Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{inbox: inbox, sink: sink, logger: logger}
}

// Run drains events until ctx is canceled, then flushes whatever is already
// buffered before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()
		case event := <-w.inbox:
			w.write(ctx, event)
		}
	}
}

func (w *Worker) flush() {
	// Detached context: the run context is already canceled.
	ctx := context.Background()
	for {
		select {
		case event := <-w.inbox:
			w.write(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) write(ctx context.Context, event Event) {
	if err := w.sink.Write(ctx, event); err != nil && w.logger != nil {
		w.logger.Error("event sink write failed",
			"type", event.Type, "run_id", event.RunID.String(), "error", err)
	}
}
