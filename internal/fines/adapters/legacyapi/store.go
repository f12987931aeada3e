package legacyapi

import (
	"context"
	"encoding/json"

	"finetrack/internal/fines/models"
	id "finetrack/pkg/domain"
	"finetrack/pkg/platform/sentinel"
)

// PaymentRecorder keeps confirmed payments for a backend that cannot.
type PaymentRecorder interface {
	Record(ctx context.Context, fineID id.FineID) error
	PaidFines(ctx context.Context) (models.PaymentLedger, error)
}

// Store adapts the legacy API to the fines persistence ports. The legacy API
// has no payment endpoint, so payments go to a local recorder and are merged
// into reads.
type Store struct {
	client   *Client
	payments PaymentRecorder
}

func NewStore(client *Client, payments PaymentRecorder) *Store {
	return &Store{client: client, payments: payments}
}

func (s *Store) ListCivilians(ctx context.Context) ([]models.Civilian, error) {
	items, err := s.client.getList(ctx, PathUsers)
	if err != nil {
		return nil, err
	}
	out := make([]models.Civilian, 0, len(items))
	for _, raw := range items {
		var u userDTO
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, NewProviderError(ErrorBadData, PathUsers, "decode user", err)
		}
		out = append(out, u.toCivilian())
	}
	return out, nil
}

func (s *Store) ListOffences(ctx context.Context) ([]models.OffenceEntry, error) {
	items, err := s.client.getList(ctx, PathOffences)
	if err != nil {
		return nil, err
	}
	out := make([]models.OffenceEntry, 0, len(items))
	for _, raw := range items {
		var o offenceDTO
		if err := json.Unmarshal(raw, &o); err != nil {
			return nil, NewProviderError(ErrorBadData, PathOffences, "decode offence", err)
		}
		out = append(out, o.toEntry())
	}
	return out, nil
}

// ListFines returns the upstream records. An undecodable record fails the
// whole read; records are never dropped. A record whose date cannot be parsed
// is kept with a zero issue date.
func (s *Store) ListFines(ctx context.Context) ([]models.FineRecord, error) {
	items, err := s.client.getList(ctx, PathFines)
	if err != nil {
		return nil, err
	}
	out := make([]models.FineRecord, 0, len(items))
	for _, raw := range items {
		var f fineDTO
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, NewProviderError(ErrorBadData, PathFines, "decode fine", err)
		}
		rec, err := f.toRecord()
		if err != nil {
			s.client.logger.WarnContext(ctx, "legacy fine has no usable issue date",
				"fine_id", f.ID,
				"error", err,
			)
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetFine scans the full list; the legacy API has no lookup by fine id. The
// record's paid flag includes locally recorded payments.
func (s *Store) GetFine(ctx context.Context, fineID id.FineID) (models.FineRecord, error) {
	fines, err := s.ListFines(ctx)
	if err != nil {
		return models.FineRecord{}, err
	}
	for _, f := range fines {
		if f.FineID == fineID {
			if !f.IsPaid {
				ledger, err := s.payments.PaidFines(ctx)
				if err != nil {
					return models.FineRecord{}, err
				}
				f.IsPaid = ledger.Paid(fineID)
			}
			return f, nil
		}
	}
	return models.FineRecord{}, sentinel.ErrNotFound
}

func (s *Store) CreateFine(ctx context.Context, record models.FineRecord) error {
	return s.client.post(ctx, PathIssueFine, fromRecord(record))
}

// MarkPaid records the payment locally.
func (s *Store) MarkPaid(ctx context.Context, fineID id.FineID) error {
	rec, err := s.GetFine(ctx, fineID)
	if err != nil {
		return err
	}
	if rec.IsPaid {
		return sentinel.ErrAlreadyUsed
	}
	return s.payments.Record(ctx, fineID)
}

// PaidFines is the local payment ledger.
func (s *Store) PaidFines(ctx context.Context) (models.PaymentLedger, error) {
	return s.payments.PaidFines(ctx)
}
