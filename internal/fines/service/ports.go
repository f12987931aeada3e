package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Roster,OffenceSource,FineStore,PaymentLedger,PaymentGateway,AuditPublisher,TxRunner

import (
	"context"

	"finetrack/internal/fines/models"
	id "finetrack/pkg/domain"
	"finetrack/pkg/platform/audit"
)

// Roster lists registered civilians.
type Roster interface {
	ListCivilians(ctx context.Context) ([]models.Civilian, error)
}

// OffenceSource lists the offence catalog.
type OffenceSource interface {
	ListOffences(ctx context.Context) ([]models.OffenceEntry, error)
}

// FineStore persists fine records. GetFine returns sentinel.ErrNotFound for an
// unknown id; MarkPaid returns sentinel.ErrAlreadyUsed when the fine is already
// paid.
type FineStore interface {
	ListFines(ctx context.Context) ([]models.FineRecord, error)
	GetFine(ctx context.Context, fineID id.FineID) (models.FineRecord, error)
	CreateFine(ctx context.Context, record models.FineRecord) error
	MarkPaid(ctx context.Context, fineID id.FineID) error
}

// PaymentLedger reports the fines a processor has confirmed paid.
type PaymentLedger interface {
	PaidFines(ctx context.Context) (models.PaymentLedger, error)
}

// PaymentGateway hands out the hosted checkout target for a fine.
type PaymentGateway interface {
	CheckoutURL(ctx context.Context, fine models.EnrichedFineView) (string, error)
}

// AuditPublisher records audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TxRunner runs fn inside one transaction carried by ctx.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
