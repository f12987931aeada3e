package store

import (
	"context"
	"slices"
	"sync"

	"finetrack/internal/fines/models"
	id "finetrack/pkg/domain"
	"finetrack/pkg/platform/sentinel"
)

// InMemoryStore serves the roster, catalog and fine records from memory. It
// satisfies every persistence port of the fines service.
type InMemoryStore struct {
	mu        sync.RWMutex
	civilians []models.Civilian
	offences  []models.OffenceEntry
	fines     map[id.FineID]models.FineRecord
	order     []id.FineID
	ledger    *Ledger
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		fines:  make(map[id.FineID]models.FineRecord),
		ledger: NewLedger(),
	}
}

// AddCivilian registers a roster entry. Identity codes are unique regardless
// of suffix case.
func (s *InMemoryStore) AddCivilian(_ context.Context, c models.Civilian) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.civilians {
		if existing.IdentityCode.Equal(c.IdentityCode) {
			return sentinel.ErrConflict
		}
	}
	s.civilians = append(s.civilians, c)
	return nil
}

// AddOffence appends a catalog entry. Duplicate ids are kept; readers resolve
// to the first.
func (s *InMemoryStore) AddOffence(_ context.Context, e models.OffenceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offences = append(s.offences, e)
	return nil
}

func (s *InMemoryStore) ListCivilians(_ context.Context) ([]models.Civilian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.civilians), nil
}

func (s *InMemoryStore) ListOffences(_ context.Context) ([]models.OffenceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.offences), nil
}

// ListFines returns records in insertion order.
func (s *InMemoryStore) ListFines(_ context.Context) ([]models.FineRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.FineRecord, 0, len(s.order))
	for _, fineID := range s.order {
		out = append(out, s.fines[fineID])
	}
	return out, nil
}

func (s *InMemoryStore) GetFine(_ context.Context, fineID id.FineID) (models.FineRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.fines[fineID]
	if !ok {
		return models.FineRecord{}, sentinel.ErrNotFound
	}
	return rec, nil
}

func (s *InMemoryStore) CreateFine(ctx context.Context, record models.FineRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.fines[record.FineID]; exists {
		return sentinel.ErrConflict
	}
	s.fines[record.FineID] = record
	s.order = append(s.order, record.FineID)
	onRollback(ctx, func() { s.removeFine(record.FineID) })
	return nil
}

func (s *InMemoryStore) removeFine(fineID id.FineID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fines, fineID)
	s.order = slices.DeleteFunc(s.order, func(f id.FineID) bool { return f == fineID })
}

// MarkPaid flips IsPaid once; a second call returns sentinel.ErrAlreadyUsed.
func (s *InMemoryStore) MarkPaid(ctx context.Context, fineID id.FineID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.fines[fineID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if rec.IsPaid {
		return sentinel.ErrAlreadyUsed
	}
	rec.IsPaid = true
	s.fines[fineID] = rec
	onRollback(ctx, func() { s.unmarkPaid(fineID) })
	return s.ledger.Record(ctx, fineID)
}

// unmarkPaid reverts a MarkPaid that never committed.
func (s *InMemoryStore) unmarkPaid(fineID id.FineID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.fines[fineID]; ok {
		rec.IsPaid = false
		s.fines[fineID] = rec
	}
}

// PaidFines reports the fines paid through this store.
func (s *InMemoryStore) PaidFines(ctx context.Context) (models.PaymentLedger, error) {
	return s.ledger.PaidFines(ctx)
}

// Ledger is an in-memory set of confirmed payments. It backs the payment
// ledger when fine records live in a system that cannot record payments.
type Ledger struct {
	mu   sync.RWMutex
	paid map[id.FineID]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{paid: make(map[id.FineID]struct{})}
}

// Record adds fineID, returning sentinel.ErrAlreadyUsed if it is present.
func (l *Ledger) Record(ctx context.Context, fineID id.FineID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.paid[fineID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	l.paid[fineID] = struct{}{}
	onRollback(ctx, func() {
		l.mu.Lock()
		delete(l.paid, fineID)
		l.mu.Unlock()
	})
	return nil
}

func (l *Ledger) PaidFines(_ context.Context) (models.PaymentLedger, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(models.PaymentLedger, len(l.paid))
	for fineID := range l.paid {
		out[fineID] = true
	}
	return out, nil
}
