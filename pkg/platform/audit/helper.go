package audit

import (
	"context"
	"log/slog"

	"zkid/pkg/requestcontext"
)

// Logger records an event twice: as a log line tagged log_type=audit, and on
// the audit trail through the Emitter. Either side may be nil.
type Logger struct {
	log     *slog.Logger
	emitter Emitter
}

func NewLogger(log *slog.Logger, emitter Emitter) *Logger {
	return &Logger{log: log, emitter: emitter}
}

// Record fills RequestID and Timestamp from ctx when unset. A failed emit is
// logged and swallowed; the trail never changes an issuance outcome.
func (l *Logger) Record(ctx context.Context, e Event) {
	if l == nil {
		return
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = requestcontext.Now(ctx)
	}

	if l.log != nil {
		l.log.LogAttrs(ctx, slog.LevelInfo, e.Action, append([]slog.Attr{slog.String("log_type", "audit")}, e.attrs()...)...)
	}
	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, e); err != nil && l.log != nil {
		l.log.ErrorContext(ctx, "emit audit event", "error", err, "event", e.Action)
	}
}

// attrs lists the populated fields; actor is always present.
func (e Event) attrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("event", e.Action), slog.String("actor", e.Actor)}
	for _, f := range [...]struct{ key, val string }{
		{"subject", e.Subject},
		{"token_id", e.TokenID},
		{"decision", e.Decision},
		{"reason", e.Reason},
		{"proof_fingerprint", e.ProofFingerprint},
		{"request_id", e.RequestID},
	} {
		if f.val != "" {
			attrs = append(attrs, slog.String(f.key, f.val))
		}
	}
	return attrs
}
