package audit

import (
	"EduPortal/entity"
	"EduPortal/internal/memstore"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type flakySink struct {
	failures int
	calls    int
	got      []entity.AuditEvent
}

func (f *flakySink) Name() string { return "flaky" }

func (f *flakySink) Write(_ context.Context, ev entity.AuditEvent) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("unavailable")
	}
	f.got = append(f.got, ev)
	return nil
}

func newEmitter(attempts int, sinks ...Sink) *Emitter {
	e := NewEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)), attempts, sinks...)
	e.backoff = 0
	return e
}

func TestEmit_RetriesThenDelivers(t *testing.T) {
	sink := &flakySink{failures: 2}
	newEmitter(3, sink).Emit(context.Background(), entity.AuditEvent{Action: entity.AuditSettingsUpdated, ActorID: "a"})

	if sink.calls != 3 || len(sink.got) != 1 {
		t.Fatalf("calls = %d, delivered = %d", sink.calls, len(sink.got))
	}
	if sink.got[0].ID == "" || sink.got[0].CreatedAt.IsZero() {
		t.Errorf("event not stamped: %+v", sink.got[0])
	}
}

func TestEmit_FailingSinkDoesNotBlockOthers(t *testing.T) {
	broken := &flakySink{failures: 100}
	store := memstore.New()
	newEmitter(2, broken, NewStoreSink(store)).Emit(context.Background(), entity.AuditEvent{Action: entity.AuditLogin, ActorID: "a"})

	if broken.calls != 2 {
		t.Errorf("broken sink tried %d times, want 2", broken.calls)
	}
	events, _ := store.RecentAudit(context.Background(), 10)
	if len(events) != 1 {
		t.Errorf("store has %d events, want 1", len(events))
	}
}

func TestEmit_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &flakySink{}
	newEmitter(1, sink).Emit(ctx, entity.AuditEvent{Action: entity.AuditLogin})
	if len(sink.got) != 1 {
		t.Error("event dropped for cancelled request")
	}
}

type notes struct{ msgs []string }

func (n *notes) SendMessage(text string) { n.msgs = append(n.msgs, text) }

func TestAlertSink(t *testing.T) {
	n := &notes{}
	sink := NewAlertSink(n)
	_ = sink.Write(context.Background(), entity.AuditEvent{Action: entity.AuditLogin})
	_ = sink.Write(context.Background(), entity.AuditEvent{
		Action: entity.AuditSchoolStatusChanged, ActorID: "admin-1",
		TargetKind: "school", TargetID: "s-1",
		Metadata: map[string]any{"from_status": "ativo", "to_status": "suspenso", "reason_category": "billing"},
	})
	if len(n.msgs) != 1 {
		t.Fatalf("got %d alerts, want 1", len(n.msgs))
	}
	for _, want := range []string{"SCHOOL_STATUS_CHANGED", "school s-1", "ativo -> suspenso", "billing"} {
		if !strings.Contains(n.msgs[0], want) {
			t.Errorf("alert %q missing %q", n.msgs[0], want)
		}
	}
}

// stuckSink never answers until its context ends.
type stuckSink struct{ calls int }

func (s *stuckSink) Name() string { return "stuck" }

func (s *stuckSink) Write(ctx context.Context, _ entity.AuditEvent) error {
	s.calls++
	<-ctx.Done()
	return ctx.Err()
}

func TestEmit_StuckSinkIsBounded(t *testing.T) {
	stuck := &stuckSink{}
	store := memstore.New()
	e := newEmitter(3, stuck, NewStoreSink(store))
	e.SetSinkTimeout(30 * time.Millisecond)

	start := time.Now()
	e.Emit(context.Background(), entity.AuditEvent{Action: entity.AuditLogin, ActorID: "a"})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Emit took %v with a stuck sink", elapsed)
	}
	if stuck.calls < 1 {
		t.Errorf("stuck sink never tried")
	}
	events, _ := store.RecentAudit(context.Background(), 10)
	if len(events) != 1 {
		t.Errorf("store has %d events, want 1", len(events))
	}
}

func TestSetSinkTimeout_IgnoresTinyValues(t *testing.T) {
	e := newEmitter(1)
	for _, d := range []time.Duration{0, -time.Second, time.Microsecond} {
		e.SetSinkTimeout(d)
		if e.sinkTimeout != DefaultSinkTimeout {
			t.Errorf("SetSinkTimeout(%v) changed timeout to %v", d, e.sinkTimeout)
		}
	}
}
