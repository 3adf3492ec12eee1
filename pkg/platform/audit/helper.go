package audit

import (
	"context"
	"fmt"
	"log/slog"

	id "backupauth/pkg/domain"
	"backupauth/pkg/requestcontext"
)

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger writes an audit line to the structured log and forwards the same event to
// an optional Emitter.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
	}
}

// Log records event for accountID. Attributes are slog-style key/value pairs and are
// copied into Event.Details.
//
//	logger.Log(ctx, audit.EventReceiptRedeemed, accountID, "receipt_level", "201")
func (l *Logger) Log(ctx context.Context, event AuditEvent, accountID id.AccountID, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)

	if l.textLogger != nil {
		args := append([]any{
			"event", string(event),
			"log_type", "audit",
			"account_id", accountID.String(),
		}, attributes...)
		if requestID != "" {
			args = append(args, "request_id", requestID)
		}
		l.textLogger.InfoContext(ctx, string(event), args...)
	}

	if l.emitter == nil {
		return
	}
	err := l.emitter.Emit(ctx, Event{
		Timestamp: requestcontext.Now(ctx),
		AccountID: accountID,
		Action:    string(event),
		RequestID: requestID,
		Details:   detailsFrom(attributes),
	})
	if err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", string(event),
		)
	}
}

func detailsFrom(attributes []any) map[string]string {
	if len(attributes) < 2 {
		return nil
	}
	details := make(map[string]string, len(attributes)/2)
	for i := 0; i+1 < len(attributes); i += 2 {
		key, ok := attributes[i].(string)
		if !ok {
			continue
		}
		details[key] = fmt.Sprint(attributes[i+1])
	}
	return details
}
