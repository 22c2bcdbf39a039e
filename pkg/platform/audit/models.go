package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can route or retain them differently.
type EventCategory string

const (
	// CategorySecurity covers authentication and privileged changes.
	CategorySecurity EventCategory = "security"
	// CategoryLedger covers point-affecting scan outcomes.
	CategoryLedger EventCategory = "ledger"
	// CategoryOperations covers routine, sampled-friendly activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	// UserID is the identity the event is about.
	UserID string
	// ActorID is who performed the action when different from UserID
	// (an admin editing another identity).
	ActorID   string
	Action    string
	Subject   string
	Reason    string
	Email     string
	RequestID string
	Device    string
	ClientIP  string
}

type AuditEvent string

const (
	EventUserCreated  AuditEvent = "user_created"
	EventUserLoggedIn AuditEvent = "user_logged_in"
	EventAuthFailed   AuditEvent = "auth_failed"
	EventUserUpdated  AuditEvent = "user_updated"
	EventUserDeleted  AuditEvent = "user_deleted"

	EventScanCredited AuditEvent = "scan_credited"
	EventScanRejected AuditEvent = "scan_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:  CategorySecurity,
	EventUserLoggedIn: CategoryOperations,
	EventAuthFailed:   CategorySecurity,
	EventUserUpdated:  CategorySecurity,
	EventUserDeleted:  CategorySecurity,
	EventScanCredited: CategoryLedger,
	EventScanRejected: CategoryLedger,
}

// Category returns the category for a known action, defaulting to operations.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// Store persists audit events. Implementations: memory, postgres, kafka.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader lists recent events for operational visibility.
type Reader interface {
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
