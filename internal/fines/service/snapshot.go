package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finetrack/internal/fines/models"
	dErrors "finetrack/pkg/domain-errors"
)

// Snapshot sources, as reported in FailedSources.
const (
	SourceRoster  = "roster"
	SourceCatalog = "catalog"
	SourceRecords = "records"
	SourceLedger  = "ledger"
)

// snapshot is one consistent read of the collaborators, owned by a single call.
type snapshot struct {
	roster  []models.Civilian
	entries []models.OffenceEntry
	records []models.FineRecord
	ledger  models.PaymentLedger
	failed  []string
}

func (s *snapshot) partial() bool { return len(s.failed) > 0 }

// load fetches the named sources concurrently. A failing required source fails
// the call with an unavailable error; a failing optional source is recorded in
// failed and left empty.
func (s *Service) load(ctx context.Context, required, optional []string) (*snapshot, error) {
	snap := &snapshot{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(src string, mandatory bool) {
		g.Go(func() error {
			start := time.Now()
			err := s.fetchSource(gctx, src, snap)
			s.metrics.ObserveFetchLatency(src, time.Since(start))
			if err == nil {
				return nil
			}
			s.metrics.IncrementFetchFailure(src)
			if mandatory {
				return dErrors.Wrap(err, dErrors.CodeUnavailable, src+" unavailable")
			}
			s.logger.WarnContext(ctx, "snapshot source unavailable, continuing with partial data",
				"source", src,
				"error", err,
			)
			mu.Lock()
			snap.failed = append(snap.failed, src)
			mu.Unlock()
			return nil
		})
	}
	for _, src := range required {
		fetch(src, true)
	}
	for _, src := range optional {
		fetch(src, false)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slices.Sort(snap.failed)
	return snap, nil
}

// fetchSource writes only the field owned by src.
func (s *Service) fetchSource(ctx context.Context, src string, snap *snapshot) error {
	var err error
	switch src {
	case SourceRoster:
		snap.roster, err = s.roster.ListCivilians(ctx)
	case SourceCatalog:
		snap.entries, err = s.offences.ListOffences(ctx)
	case SourceRecords:
		snap.records, err = s.fines.ListFines(ctx)
	case SourceLedger:
		if s.ledger != nil {
			snap.ledger, err = s.ledger.PaidFines(ctx)
		}
	}
	return err
}
