package audit

import (
	"EduPortal/entity"
	"context"
	"fmt"
	"strings"
)

type Repository interface {
	AppendAudit(ctx context.Context, ev entity.AuditEvent) error
}

// StoreSink persists events in the audit log.
type StoreSink struct {
	repo Repository
}

func NewStoreSink(repo Repository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Write(ctx context.Context, ev entity.AuditEvent) error {
	return s.repo.AppendAudit(ctx, ev)
}

type Broadcaster interface {
	Broadcast(ev entity.AuditEvent)
}

// FeedSink pushes events to connected live feed clients.
type FeedSink struct {
	feed Broadcaster
}

func NewFeedSink(feed Broadcaster) *FeedSink {
	return &FeedSink{feed: feed}
}

func (s *FeedSink) Name() string { return "feed" }

func (s *FeedSink) Write(_ context.Context, ev entity.AuditEvent) error {
	s.feed.Broadcast(ev)
	return nil
}

type Notifier interface {
	SendMessage(text string)
}

// AlertSink notifies the administrator chat about status and settings
// changes. Login events are not forwarded.
type AlertSink struct {
	notifier Notifier
}

func NewAlertSink(notifier Notifier) *AlertSink {
	return &AlertSink{notifier: notifier}
}

func (s *AlertSink) Name() string { return "alert" }

func (s *AlertSink) Write(_ context.Context, ev entity.AuditEvent) error {
	if ev.Action == entity.AuditLogin {
		return nil
	}
	s.notifier.SendMessage(FormatAlert(ev))
	return nil
}

func FormatAlert(ev entity.AuditEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", ev.Action)
	if ev.TargetKind != "" {
		fmt.Fprintf(&b, "target: %s %s\n", ev.TargetKind, ev.TargetID)
	}
	fmt.Fprintf(&b, "actor: %s\n", ev.ActorID)
	if from, ok := ev.Metadata["from_status"]; ok {
		fmt.Fprintf(&b, "status: %v -> %v\n", from, ev.Metadata["to_status"])
	}
	if reason, ok := ev.Metadata["reason_category"]; ok && reason != "" {
		fmt.Fprintf(&b, "reason: %v\n", reason)
	}
	if version, ok := ev.Metadata["version"]; ok {
		fmt.Fprintf(&b, "version: %v\n", version)
	}
	return strings.TrimRight(b.String(), "\n")
}
