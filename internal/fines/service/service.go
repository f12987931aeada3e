// Package service orchestrates the fines domain over the persistence, payment
// and audit collaborators. Every call reads its own snapshot and keeps nothing
// between calls.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"finetrack/internal/fines/catalog"
	"finetrack/internal/fines/identity"
	"finetrack/internal/fines/issuance"
	"finetrack/internal/fines/metrics"
	"finetrack/internal/fines/models"
	"finetrack/internal/fines/reconcile"
	"finetrack/internal/fines/stats"
	id "finetrack/pkg/domain"
	dErrors "finetrack/pkg/domain-errors"
	"finetrack/pkg/platform/audit"
	"finetrack/pkg/platform/sentinel"
	"finetrack/pkg/requestcontext"
)

var tracer = otel.Tracer("finetrack/internal/fines/service")

// Service is the fines application service.
type Service struct {
	roster     Roster
	offences   OffenceSource
	fines      FineStore
	compliance AuditPublisher

	ledger  PaymentLedger
	gateway PaymentGateway
	tx      TxRunner
	ops     AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	loc     *time.Location
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPaymentLedger adds processor-confirmed payments to every join.
func WithPaymentLedger(l PaymentLedger) Option {
	return func(s *Service) { s.ledger = l }
}

func WithPaymentGateway(g PaymentGateway) Option {
	return func(s *Service) { s.gateway = g }
}

// WithTxRunner makes fine writes and their compliance events commit together.
func WithTxRunner(tx TxRunner) Option {
	return func(s *Service) { s.tx = tx }
}

// WithOpsPublisher receives best-effort operational and security events.
func WithOpsPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.ops = p }
}

// WithLocation sets the calendar used for "today" and default issue dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(roster Roster, offences OffenceSource, fines FineStore, compliance AuditPublisher, opts ...Option) (*Service, error) {
	if roster == nil || offences == nil || fines == nil {
		return nil, errors.New("roster, offence source and fine store are required")
	}
	if compliance == nil {
		return nil, errors.New("compliance publisher is required")
	}
	s := &Service{
		roster:     roster,
		offences:   offences,
		fines:      fines,
		compliance: compliance,
		logger:     slog.New(slog.DiscardHandler),
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FineReport is a scoped, enriched fine list.
type FineReport struct {
	Fines         []models.EnrichedFineView `json:"fines"`
	Outstanding   decimal.Decimal           `json:"outstanding"`
	UnpaidCount   int                       `json:"unpaidCount"`
	Partial       bool                      `json:"partial"`
	FailedSources []string                  `json:"failedSources,omitempty"`
}

// DashboardReport is the admin overview.
type DashboardReport struct {
	Stats         models.AggregateStatistics `json:"stats"`
	CourtIssued   int                        `json:"courtIssued"`
	Outstanding   decimal.Decimal            `json:"outstanding"`
	AsOf          models.Date                `json:"asOf"`
	Unresolved    []id.FineID                `json:"unresolved,omitempty"`
	Partial       bool                       `json:"partial"`
	FailedSources []string                   `json:"failedSources,omitempty"`
	GeneratedAt   time.Time                  `json:"generatedAt"`
}

// PaymentIntent is where the payer is sent to settle a fine.
type PaymentIntent struct {
	FineID      id.FineID       `json:"fineId"`
	Amount      decimal.Decimal `json:"amount"`
	RedirectURL string          `json:"redirectUrl"`
}

// ConfirmResult reports how a payment confirmation was applied.
type ConfirmResult struct {
	FineID      id.FineID `json:"fineId"`
	AlreadyPaid bool      `json:"alreadyPaid"`
}

func (s *Service) now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx).In(s.loc)
}

// MatchIdentity looks the query up in the current roster.
func (s *Service) MatchIdentity(ctx context.Context, query string) (identity.MatchResult, error) {
	ctx, span := tracer.Start(ctx, "fines.MatchIdentity")
	defer span.End()

	snap, err := s.load(ctx, []string{SourceRoster}, nil)
	if err != nil {
		return identity.MatchResult{}, recordErr(span, err)
	}
	result := identity.Match(query, snap.roster)
	span.SetAttributes(attribute.Int("candidates", len(result.Candidates)))
	return result, nil
}

// ListOffences returns the catalog in source order, first entry per id.
func (s *Service) ListOffences(ctx context.Context) ([]models.OffenceEntry, error) {
	ctx, span := tracer.Start(ctx, "fines.ListOffences")
	defer span.End()

	snap, err := s.load(ctx, []string{SourceCatalog}, nil)
	if err != nil {
		return nil, recordErr(span, err)
	}
	return catalog.New(snap.entries).Entries(), nil
}

// IssueFine validates the draft against a fresh roster and catalog and stores
// it as an unpaid fine attributed to officerID.
func (s *Service) IssueFine(ctx context.Context, officerID id.OfficerID, draft issuance.Draft) (models.FineRecord, error) {
	ctx, span := tracer.Start(ctx, "fines.IssueFine", trace.WithAttributes(attribute.String("officer_id", officerID.String())))
	defer span.End()

	if officerID.IsNil() {
		return models.FineRecord{}, recordErr(span, dErrors.New(dErrors.CodeUnauthorized, "officer id required"))
	}
	draft.OfficerID = officerID

	snap, err := s.load(ctx, []string{SourceRoster, SourceCatalog}, nil)
	if err != nil {
		return models.FineRecord{}, recordErr(span, err)
	}

	var record models.FineRecord
	form := issuance.NewForm()
	validator := issuance.NewValidator(snap.roster, catalog.New(snap.entries))
	_, err = form.Submit(ctx, validator, draft, s.now(ctx), func(ctx context.Context, sub issuance.Submission) error {
		record = sub.Record(id.NewFineID())
		return s.runInTx(ctx, func(ctx context.Context) error {
			if err := s.fines.CreateFine(ctx, record); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return dErrors.Wrap(err, dErrors.CodeConflict, "fine already exists")
				}
				return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store fine")
			}
			return s.compliance.Emit(ctx, audit.Event{
				Action:        string(audit.EventFineIssued),
				Subject:       record.FineID.String(),
				ActorID:       officerID.String(),
				SubjectIDHash: audit.HashSubjectID(record.CivilianIdentityCode.String()),
				Decision:      "issued",
				RequestID:     requestcontext.RequestID(ctx),
				IP:            requestcontext.ClientIP(ctx),
			})
		})
	})
	if err != nil {
		if isRejection(err) {
			reason := string(dErrors.CodeOf(err))
			s.metrics.IncrementIssuanceRejected(reason)
			s.emitOps(ctx, audit.Event{
				Action:   string(audit.EventIssuanceRejected),
				ActorID:  officerID.String(),
				Decision: "rejected",
				Reason:   reason,
			})
			s.logger.InfoContext(ctx, "fine issuance rejected",
				"request_id", requestcontext.RequestID(ctx),
				"reason", reason,
			)
			return models.FineRecord{}, err
		}
		s.logger.ErrorContext(ctx, "fine issuance failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return models.FineRecord{}, recordErr(span, asServiceError(err, "failed to issue fine"))
	}

	s.metrics.IncrementFinesIssued()
	s.logger.InfoContext(ctx, "fine issued",
		"request_id", requestcontext.RequestID(ctx),
		"fine_id", record.FineID,
		"officer_id", officerID,
	)
	return record, nil
}

// OfficerFines lists the fines the officer issued.
func (s *Service) OfficerFines(ctx context.Context, officerID id.OfficerID) (FineReport, error) {
	ctx, span := tracer.Start(ctx, "fines.OfficerFines")
	defer span.End()

	views, snap, err := s.views(ctx)
	if err != nil {
		return FineReport{}, recordErr(span, err)
	}
	return newReport(reconcile.ScopeByOfficer(views, officerID), snap), nil
}

// CivilianFines lists the fines issued to the identity code, with the amount
// still outstanding.
func (s *Service) CivilianFines(ctx context.Context, code id.IdentityCode) (FineReport, error) {
	ctx, span := tracer.Start(ctx, "fines.CivilianFines")
	defer span.End()

	views, snap, err := s.views(ctx)
	if err != nil {
		return FineReport{}, recordErr(span, err)
	}
	return newReport(reconcile.ScopeByCivilian(views, code), snap), nil
}

// AllFines lists every fine.
func (s *Service) AllFines(ctx context.Context) (FineReport, error) {
	ctx, span := tracer.Start(ctx, "fines.AllFines")
	defer span.End()

	views, snap, err := s.views(ctx)
	if err != nil {
		return FineReport{}, recordErr(span, err)
	}
	return newReport(views, snap), nil
}

// Dashboard computes the aggregate statistics for today in the configured
// location.
func (s *Service) Dashboard(ctx context.Context) (DashboardReport, error) {
	ctx, span := tracer.Start(ctx, "fines.Dashboard")
	defer span.End()

	views, snap, err := s.views(ctx)
	if err != nil {
		return DashboardReport{}, recordErr(span, err)
	}

	now := s.now(ctx)
	asOf := models.DateOf(now)
	st := stats.Compute(views, asOf)

	var unresolved []id.FineID
	for _, v := range reconcile.Unresolved(views) {
		unresolved = append(unresolved, v.FineID)
	}

	s.emitOps(ctx, audit.Event{
		Action:   string(audit.EventDashboardViewed),
		ActorID:  requestcontext.UserID(ctx),
		Decision: "viewed",
	})

	return DashboardReport{
		Stats:         st,
		CourtIssued:   st.CourtIssued(),
		Outstanding:   stats.Outstanding(views),
		AsOf:          asOf,
		Unresolved:    unresolved,
		Partial:       snap.partial(),
		FailedSources: snap.failed,
		GeneratedAt:   now,
	}, nil
}

// InitiatePayment checks that code owns an unpaid fine and returns the hosted
// checkout target. It never marks the fine paid.
func (s *Service) InitiatePayment(ctx context.Context, code id.IdentityCode, fineID id.FineID) (PaymentIntent, error) {
	ctx, span := tracer.Start(ctx, "fines.InitiatePayment", trace.WithAttributes(attribute.String("fine_id", fineID.String())))
	defer span.End()

	if s.gateway == nil {
		return PaymentIntent{}, recordErr(span, dErrors.New(dErrors.CodeUnavailable, "payments are not configured"))
	}

	record, err := s.getFine(ctx, fineID)
	if err != nil {
		return PaymentIntent{}, recordErr(span, err)
	}
	if !record.CivilianIdentityCode.Equal(code) {
		return PaymentIntent{}, recordErr(span, dErrors.New(dErrors.CodeForbidden, "fine belongs to another civilian"))
	}

	snap, err := s.load(ctx, []string{SourceCatalog}, []string{SourceLedger})
	if err != nil {
		return PaymentIntent{}, recordErr(span, err)
	}
	views := reconcile.JoinWithPayments([]models.FineRecord{record}, snap.entries, snap.ledger)
	view := views[0]
	if view.IsPaid {
		return PaymentIntent{}, recordErr(span, dErrors.New(dErrors.CodeConflict, "fine is already paid"))
	}
	if !view.Resolved {
		return PaymentIntent{}, recordErr(span, dErrors.New(dErrors.CodeUnavailable, "fine amount cannot be determined"))
	}

	target, err := s.gateway.CheckoutURL(ctx, view)
	if err != nil {
		s.logger.ErrorContext(ctx, "checkout unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"fine_id", fineID,
			"error", err,
		)
		return PaymentIntent{}, recordErr(span, dErrors.Wrap(err, dErrors.CodeUnavailable, "checkout unavailable"))
	}

	s.emitOps(ctx, audit.Event{
		Action:        string(audit.EventPaymentInitiated),
		Subject:       fineID.String(),
		ActorID:       requestcontext.UserID(ctx),
		SubjectIDHash: audit.HashSubjectID(code.String()),
		Decision:      "redirected",
	})
	return PaymentIntent{FineID: fineID, Amount: view.Amount, RedirectURL: target}, nil
}

// ConfirmPayment applies a processor-confirmed payment. It is the only path
// that sets IsPaid. Confirming a paid fine again is a no-op.
func (s *Service) ConfirmPayment(ctx context.Context, conf models.PaymentConfirmation) (ConfirmResult, error) {
	ctx, span := tracer.Start(ctx, "fines.ConfirmPayment", trace.WithAttributes(
		attribute.String("fine_id", conf.FineID.String()),
		attribute.String("event_id", conf.EventID),
	))
	defer span.End()

	if conf.FineID.IsNil() || conf.IdentityCode.IsNil() {
		return ConfirmResult{}, recordErr(span, dErrors.New(dErrors.CodeValidation, "fine id and identity code are required"))
	}

	record, err := s.getFine(ctx, conf.FineID)
	if err != nil {
		return ConfirmResult{}, recordErr(span, err)
	}
	if !record.CivilianIdentityCode.Equal(conf.IdentityCode) {
		s.emitOps(ctx, audit.Event{
			Action:        string(audit.EventPaymentRejected),
			Subject:       conf.FineID.String(),
			ActorID:       "payment-processor",
			SubjectIDHash: audit.HashSubjectID(conf.IdentityCode.String()),
			Decision:      "rejected",
			Reason:        "identity_mismatch",
		})
		s.logger.WarnContext(ctx, "payment confirmation rejected - identity mismatch",
			"fine_id", conf.FineID,
			"event_id", conf.EventID,
		)
		return ConfirmResult{}, recordErr(span, dErrors.New(dErrors.CodeForbidden, "payer does not own the fine"))
	}
	if record.IsPaid {
		s.metrics.IncrementPaymentsDuplicate()
		return ConfirmResult{FineID: conf.FineID, AlreadyPaid: true}, nil
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.fines.MarkPaid(ctx, conf.FineID); err != nil {
			return err
		}
		return s.compliance.Emit(ctx, audit.Event{
			Action:        string(audit.EventFinePaid),
			Subject:       conf.FineID.String(),
			ActorID:       "payment-processor",
			SubjectIDHash: audit.HashSubjectID(conf.IdentityCode.String()),
			Decision:      "paid",
			Reason:        conf.Reference,
			RequestID:     conf.EventID,
		})
	})
	switch {
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		s.metrics.IncrementPaymentsDuplicate()
		return ConfirmResult{FineID: conf.FineID, AlreadyPaid: true}, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "failed to confirm payment",
			"fine_id", conf.FineID,
			"event_id", conf.EventID,
			"error", err,
		)
		return ConfirmResult{}, recordErr(span, asServiceError(err, "failed to confirm payment"))
	}

	s.metrics.IncrementPaymentsConfirmed()
	s.logger.InfoContext(ctx, "payment confirmed",
		"fine_id", conf.FineID,
		"event_id", conf.EventID,
	)
	return ConfirmResult{FineID: conf.FineID}, nil
}

// views joins the records with the catalog and ledger. Records are mandatory;
// catalog and ledger failures degrade the report.
func (s *Service) views(ctx context.Context) ([]models.EnrichedFineView, *snapshot, error) {
	snap, err := s.load(ctx, []string{SourceRecords}, []string{SourceCatalog, SourceLedger})
	if err != nil {
		return nil, nil, err
	}
	views := reconcile.JoinWithPayments(snap.records, snap.entries, snap.ledger)
	s.metrics.AddUnresolvedReferences(len(reconcile.Unresolved(views)))
	if snap.partial() {
		s.metrics.IncrementPartialReports()
	}
	return views, snap, nil
}

func (s *Service) getFine(ctx context.Context, fineID id.FineID) (models.FineRecord, error) {
	if fineID.IsNil() {
		return models.FineRecord{}, dErrors.New(dErrors.CodeBadRequest, "fine id required")
	}
	record, err := s.fines.GetFine(ctx, fineID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.FineRecord{}, dErrors.New(dErrors.CodeNotFound, "fine not found")
		}
		return models.FineRecord{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "records unavailable")
	}
	return record, nil
}

func (s *Service) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTx(ctx, fn)
}

// emitOps is best effort.
func (s *Service) emitOps(ctx context.Context, event audit.Event) {
	if s.ops == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.IP == "" {
		event.IP = requestcontext.ClientIP(ctx)
	}
	if err := s.ops.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func newReport(views []models.EnrichedFineView, snap *snapshot) FineReport {
	unpaid := 0
	for _, v := range views {
		if !v.IsPaid {
			unpaid++
		}
	}
	if views == nil {
		views = []models.EnrichedFineView{}
	}
	return FineReport{
		Fines:         views,
		Outstanding:   stats.Outstanding(views),
		UnpaidCount:   unpaid,
		Partial:       snap.partial(),
		FailedSources: snap.failed,
	}
}

func isRejection(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeInvalidFormat) ||
		dErrors.HasCode(err, dErrors.CodeMissingFields) ||
		dErrors.HasCode(err, dErrors.CodeValidation)
}

// asServiceError keeps coded errors and wraps anything else as internal.
func asServiceError(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}
