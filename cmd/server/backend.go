package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finetrack/internal/fines/adapters/legacyapi"
	"finetrack/internal/fines/service"
	"finetrack/internal/fines/store"
	"finetrack/internal/platform/config"
	"finetrack/internal/platform/postgres"
	httptransport "finetrack/internal/transport/http"
	"finetrack/pkg/platform/audit"
	auditconsumer "finetrack/pkg/platform/audit/consumer"
	auditmemory "finetrack/pkg/platform/audit/store/memory"
	auditpg "finetrack/pkg/platform/audit/store/postgres"
	"finetrack/pkg/platform/audit/worker"
	"finetrack/pkg/platform/circuit"
	"finetrack/pkg/platform/tx"
)

// backend is the storage side of the process for one configured backend.
type backend struct {
	roster   service.Roster
	offences service.OffenceSource
	fines    service.FineStore
	ledger   service.PaymentLedger
	tx       service.TxRunner

	audit audit.Store
	// outbox and auditSink are set only when audit events go through the
	// Postgres outbox.
	outbox    worker.Outbox
	auditSink auditconsumer.EventStore

	checks  map[string]httptransport.HealthCheck
	closers []func() error
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
}

func newBackend(ctx context.Context, cfg config.Server, logger *slog.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return newMemoryBackend(ctx, cfg, logger)
	case config.BackendPostgres:
		return newPostgresBackend(ctx, cfg)
	case config.BackendLegacy:
		return newLegacyBackend(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func newMemoryBackend(ctx context.Context, cfg config.Server, logger *slog.Logger) (*backend, error) {
	st := store.NewInMemoryStore()
	if cfg.Seed {
		if err := store.Seed(ctx, st, time.Now().In(cfg.Location())); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("loaded demo data")
	}
	return &backend{
		roster:   st,
		offences: st,
		fines:    st,
		ledger:   st,
		tx:       store.NewMemoryTx(),
		audit:    auditmemory.NewInMemoryStore(),
		checks:   map[string]httptransport.HealthCheck{},
	}, nil
}

func newPostgresBackend(ctx context.Context, cfg config.Server) (*backend, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
	}
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	b := &backend{closers: []func() error{db.Close}}

	st := store.NewPostgres(db)
	if err := st.Migrate(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("migrate fines schema: %w", err)
	}
	auditStore := auditpg.New(db)
	if err := auditStore.Migrate(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("migrate audit schema: %w", err)
	}

	b.roster, b.offences, b.fines, b.ledger = st, st, st, st
	b.tx = tx.NewRunner(db)
	b.audit = auditStore
	b.outbox = auditStore
	b.auditSink = auditStore
	b.checks = map[string]httptransport.HealthCheck{"postgres": pingDB(db)}
	return b, nil
}

func newLegacyBackend(cfg config.Server, logger *slog.Logger) (*backend, error) {
	if cfg.LegacyAPIURL == "" {
		return nil, fmt.Errorf("LEGACY_API_URL is required for the legacy backend")
	}
	client := legacyapi.NewClient(cfg.LegacyAPIURL,
		legacyapi.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		legacyapi.WithToken(cfg.LegacyAPIToken),
		legacyapi.WithLogger(logger),
		legacyapi.WithBreaker(circuit.New("legacy-api")),
	)
	st := legacyapi.NewStore(client, store.NewLedger())
	return &backend{
		roster:   st,
		offences: st,
		fines:    st,
		ledger:   st,
		tx:       store.NewMemoryTx(),
		audit:    auditmemory.NewInMemoryStore(),
		checks:   map[string]httptransport.HealthCheck{},
	}, nil
}

func pingDB(db *sql.DB) httptransport.HealthCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
