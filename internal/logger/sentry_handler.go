package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// SentryHandler wraps an slog.Handler and reports Error records that carry
// an "error" attribute to Sentry. Other attributes become event tags, so
// poll_id, quiz_id and chat_id are searchable.
type SentryHandler struct {
	handler slog.Handler
	hub     *sentry.Hub
	attrs   []slog.Attr
}

func NewSentryHandler(handler slog.Handler) *SentryHandler {
	return &SentryHandler{handler: handler}
}

// WithHub reports to hub instead of the global one.
func (h *SentryHandler) WithHub(hub *sentry.Hub) *SentryHandler {
	return &SentryHandler{handler: h.handler, hub: hub, attrs: h.attrs}
}

func (h *SentryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *SentryHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		h.capture(r)
	}
	return h.handler.Handle(ctx, r)
}

func (h *SentryHandler) capture(r slog.Record) {
	var cause error
	tags := make(map[string]string)
	collect := func(a slog.Attr) bool {
		if a.Key == "error" {
			if err, ok := a.Value.Any().(error); ok {
				cause = err
				return true
			}
		}
		tags[a.Key] = a.Value.String()
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	if cause == nil {
		return
	}

	hub := h.hub
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetExtra("message", r.Message)
		hub.CaptureException(cause)
	})
}

func (h *SentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &SentryHandler{handler: h.handler.WithAttrs(attrs), hub: h.hub, attrs: merged}
}

func (h *SentryHandler) WithGroup(name string) slog.Handler {
	return &SentryHandler{handler: h.handler.WithGroup(name), hub: h.hub, attrs: h.attrs}
}
