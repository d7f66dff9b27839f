package planner

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Event captures one planner operation: a proposal, a commit or an undo.
type Event struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// Observer receives planner events.
type Observer interface {
	ObservePlanner(ctx context.Context, event Event)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) ObservePlanner(context.Context, Event) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes planner events to w as slog text records.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &logObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logObserver) ObservePlanner(ctx context.Context, event Event) {
	attrs := make([]any, 0, 6+len(event.Fields)*2)
	attrs = append(attrs,
		"op", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "planner_op", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "planner_op", attrs...)
}

// observe reports an operation that started at start and finished now.
func (s *Session) observe(ctx context.Context, name string, start time.Time, err error, fields map[string]any) {
	s.observer.ObservePlanner(ctx, Event{
		Name:      name,
		Duration:  time.Since(start),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
		StartedAt: start,
	})
}
