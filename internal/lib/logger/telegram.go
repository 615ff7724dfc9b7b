package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// MessageSender delivers a plain text alert to the admin chat.
type MessageSender interface {
	SendMessage(msg string)
}

// TelegramHandler passes every record to the wrapped handler and forwards
// records at or above level to the admin chat.
type TelegramHandler struct {
	next   slog.Handler
	sender MessageSender
	level  slog.Level
	attrs  []slog.Attr
}

func SetupTelegramHandler(log *slog.Logger, sender MessageSender, level slog.Level) *slog.Logger {
	return slog.New(&TelegramHandler{
		next:   log.Handler(),
		sender: sender,
		level:  level,
	})
}

func (h *TelegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level) || level >= h.level
}

func (h *TelegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level && h.sender != nil {
		h.sender.SendMessage(format(r, h.attrs))
	}
	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TelegramHandler{
		next:   h.next.WithAttrs(attrs),
		sender: h.sender,
		level:  h.level,
		attrs:  merged,
	}
}

// WithGroup keeps the alert flat; only the wrapped handler is grouped.
func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	return &TelegramHandler{
		next:   h.next.WithGroup(name),
		sender: h.sender,
		level:  h.level,
		attrs:  h.attrs,
	}
}

func format(r slog.Record, attrs []slog.Attr) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", r.Level.String(), r.Message)
	for _, a := range attrs {
		fmt.Fprintf(&b, "\n%s: %s", a.Key, a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, "\n%s: %s", a.Key, a.Value.String())
		return true
	})
	return b.String()
}
