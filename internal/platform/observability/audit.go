// Package observability provides the audit logging helper shared by services.
package observability

import (
	"context"
	"log/slog"

	"smartbin/pkg/attrs"
	audit "smartbin/pkg/platform/audit"
	"smartbin/pkg/requestcontext"
)

// AuditPublisher accepts audit events. *publisher.Publisher satisfies it.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit writes the event to the structured log and, when a publisher is
// wired, to the audit trail. Publish failures are logged and swallowed.
//
// Recognised attribute keys: user_id, actor_id, dustbin_id, email, reason.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.AuditEvent, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}
	args := append(attrList, "event", string(event), "log_type", "audit")
	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}
	if publisher == nil {
		return
	}

	userID := attrs.ExtractString(attrList, "user_id")
	subject := attrs.ExtractString(attrList, "dustbin_id")
	if subject == "" {
		subject = userID
	}
	err := publisher.Emit(ctx, audit.Event{
		Category:  event.Category(),
		UserID:    userID,
		ActorID:   attrs.ExtractString(attrList, "actor_id"),
		Action:    string(event),
		Subject:   subject,
		Reason:    attrs.ExtractString(attrList, "reason"),
		Email:     attrs.ExtractString(attrList, "email"),
		RequestID: requestID,
		Device:    requestcontext.Device(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
	})
	if err != nil && logger != nil {
		logger.WarnContext(ctx, "audit publish failed", "event", string(event), "error", err)
	}
}
