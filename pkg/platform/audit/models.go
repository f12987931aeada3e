package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: a fine was
	// issued or settled. These are written fail-closed.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers rejected or suspicious inputs, such as a payment
	// confirmation for a fine the payer does not own.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be dropped under load.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	// Fine lifecycle
	EventFineIssued AuditEvent = "fine_issued"
	EventFinePaid   AuditEvent = "fine_paid"

	// Rejections
	EventIssuanceRejected AuditEvent = "issuance_rejected"
	EventPaymentRejected  AuditEvent = "payment_rejected"
	EventWebhookRejected  AuditEvent = "payment_webhook_rejected"

	// Routine access
	EventPaymentInitiated AuditEvent = "payment_initiated"
	EventDashboardViewed  AuditEvent = "dashboard_viewed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventFineIssued: CategoryCompliance,
	EventFinePaid:   CategoryCompliance,

	EventPaymentRejected: CategorySecurity,
	EventWebhookRejected: CategorySecurity,

	EventIssuanceRejected: CategoryOperations,
	EventPaymentInitiated: CategoryOperations,
	EventDashboardViewed:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// Subject is the entity acted on, usually a fine id.
	Subject string
	// ActorID is the officer, civilian or system component that acted.
	ActorID string
	// SubjectIDHash is a SHA-256 of the civilian identity code, so the trail
	// can be correlated without storing the raw code.
	SubjectIDHash string
	Decision      string
	Reason        string
	RequestID     string
	IP            string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// HashSubjectID returns the hex SHA-256 of an identity code, normalised to
// upper case so both suffix spellings hash alike.
func HashSubjectID(code string) string {
	if code == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.ToUpper(code)))
	return hex.EncodeToString(sum[:])
}
