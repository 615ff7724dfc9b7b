package audit

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sink is one destination of audit events.
type Sink interface {
	Name() string
	Write(ctx context.Context, ev entity.AuditEvent) error
}

// Emitter delivers audit events to every sink. Delivery is best effort: a
// failing sink is retried a bounded number of times and then logged, and
// never fails the action being audited. Each sink gets at most sinkTimeout
// for all of its attempts.
type Emitter struct {
	sinks       []Sink
	attempts    int
	backoff     time.Duration
	sinkTimeout time.Duration
	now         func() time.Time
	log         *slog.Logger
}

const DefaultSinkTimeout = 2 * time.Second

func NewEmitter(log *slog.Logger, attempts int, sinks ...Sink) *Emitter {
	if attempts < 1 {
		attempts = 1
	}
	return &Emitter{
		sinks:       sinks,
		attempts:    attempts,
		backoff:     50 * time.Millisecond,
		sinkTimeout: DefaultSinkTimeout,
		now:         func() time.Time { return time.Now().UTC() },
		log:         log.With(sl.Module("audit")),
	}
}

// SetSinkTimeout bounds the time spent on one sink per event. Values below
// one millisecond are ignored.
func (e *Emitter) SetSinkTimeout(d time.Duration) {
	if d >= time.Millisecond {
		e.sinkTimeout = d
	}
}

func (e *Emitter) AddSink(s Sink) {
	e.sinks = append(e.sinks, s)
}

func (e *Emitter) Emit(ctx context.Context, ev entity.AuditEvent) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = e.now()
	}
	// The audited action has already happened; a cancelled request must not
	// drop its record.
	ctx = context.WithoutCancel(ctx)

	for _, sink := range e.sinks {
		if err := e.deliver(ctx, sink, ev); err != nil {
			e.log.With(
				slog.String("sink", sink.Name()),
				slog.String("event_id", ev.ID),
				slog.String("action", ev.Action),
				slog.String("actor_id", ev.ActorID),
				sl.Err(err),
			).Error("audit event not delivered")
		}
	}
}

func (e *Emitter) deliver(ctx context.Context, sink Sink, ev entity.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, e.sinkTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		if err = sink.Write(ctx, ev); err == nil {
			return nil
		}
		if attempt == e.attempts {
			break
		}
		timer := time.NewTimer(e.backoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-timer.C:
		}
	}
	return err
}
