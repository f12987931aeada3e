// Package handler exposes the fines service over HTTP. Every route requires a
// bearer token; each group is limited to one role.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"finetrack/internal/fines/identity"
	"finetrack/internal/fines/issuance"
	"finetrack/internal/fines/models"
	"finetrack/internal/fines/service"
	"finetrack/internal/ratelimit"
	id "finetrack/pkg/domain"
	dErrors "finetrack/pkg/domain-errors"
	"finetrack/pkg/platform/httputil"
	authmw "finetrack/pkg/platform/middleware/auth"
	request "finetrack/pkg/platform/middleware/request"
	"finetrack/pkg/requestcontext"
)

// ExportFilename is the attachment name of the dashboard export.
const ExportFilename = "dashboard_data.json"

// Service is the subset of the fines service the handler calls.
type Service interface {
	MatchIdentity(ctx context.Context, query string) (identity.MatchResult, error)
	ListOffences(ctx context.Context) ([]models.OffenceEntry, error)
	IssueFine(ctx context.Context, officerID id.OfficerID, draft issuance.Draft) (models.FineRecord, error)
	OfficerFines(ctx context.Context, officerID id.OfficerID) (service.FineReport, error)
	CivilianFines(ctx context.Context, code id.IdentityCode) (service.FineReport, error)
	AllFines(ctx context.Context) (service.FineReport, error)
	Dashboard(ctx context.Context) (service.DashboardReport, error)
	InitiatePayment(ctx context.Context, code id.IdentityCode, fineID id.FineID) (service.PaymentIntent, error)
}

type Handler struct {
	fines     Service
	validator authmw.JWTValidator
	logger    *slog.Logger
	matchGate func(http.Handler) http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithMatchLimit throttles identity lookups per caller.
func WithMatchLimit(store ratelimit.Store, limit int, window time.Duration) Option {
	return func(h *Handler) {
		if store == nil || limit <= 0 {
			return
		}
		h.matchGate = ratelimit.PerCaller(store, ratelimit.Policy{
			Class:  "identity_match",
			Limit:  limit,
			Window: window,
		}, h.logger)
	}
}

func New(fines Service, validator authmw.JWTValidator, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{fines: fines, validator: validator, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the fines routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(h.validator, h.logger))

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(h.logger, requestcontext.RoleOfficer))
			r.With(h.matchMiddleware()...).Get("/identity/match", h.handleMatchIdentity)
			r.Get("/offences", h.handleListOffences)
			r.Post("/fines", h.handleIssueFine)
			r.Get("/officers/me/fines", h.handleOfficerFines)
		})

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(h.logger, requestcontext.RoleCivilian))
			r.Get("/civilians/me/fines", h.handleCivilianFines)
			r.Post("/civilians/me/fines/{fineID}/pay", h.handlePay)
		})

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(h.logger, requestcontext.RoleAdmin))
			r.Get("/admin/fines", h.handleAllFines)
			r.Get("/admin/stats", h.handleStats)
			r.Get("/admin/stats/export", h.handleExportStats)
		})
	})
}

func (h *Handler) matchMiddleware() []func(http.Handler) http.Handler {
	if h.matchGate == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{h.matchGate}
}

func (h *Handler) handleMatchIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.fines.MatchIdentity(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.fail(ctx, w, "identity match failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListOffences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.fines.ListOffences(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list offences", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, offencesResponse{Offences: entries})
}

type offencesResponse struct {
	Offences []models.OffenceEntry `json:"offences"`
}

// issueRequest is the officer's draft. The officer id always comes from the
// token, never the body.
type issueRequest struct {
	issuance.Draft
}

func (req *issueRequest) Normalize() {
	req.CivilianIdentityCode = strings.TrimSpace(req.CivilianIdentityCode)
	req.CivilianDisplayName = strings.TrimSpace(req.CivilianDisplayName)
	req.OffenceName = strings.TrimSpace(req.OffenceName)
	req.VehicleNumber = strings.TrimSpace(req.VehicleNumber)
	req.IssueLocation = strings.TrimSpace(req.IssueLocation)
	req.OfficerID = ""
}

func (h *Handler) handleIssueFine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[issueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.fines.IssueFine(ctx, requestcontext.OfficerID(ctx), req.Draft)
	if err != nil {
		h.fail(ctx, w, "failed to issue fine", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleOfficerFines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.fines.OfficerFines(ctx, requestcontext.OfficerID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to list officer fines", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleCivilianFines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.fines.CivilianFines(ctx, requestcontext.IdentityCode(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to list civilian fines", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fineID := id.FineID(strings.TrimSpace(chi.URLParam(r, "fineID")))
	if fineID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "fine id is required"))
		return
	}

	intent, err := h.fines.InitiatePayment(ctx, requestcontext.IdentityCode(ctx), fineID)
	if err != nil {
		h.fail(ctx, w, "failed to initiate payment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, intent)
}

func (h *Handler) handleAllFines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.fines.AllFines(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list fines", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.fines.Dashboard(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to compute dashboard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// handleExportStats serves the dashboard as a downloadable document.
func (h *Handler) handleExportStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.fines.Dashboard(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to export dashboard", err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	httputil.WriteJSON(w, http.StatusOK, report)
}

// fail logs client errors at warn and everything else at error, then writes
// the mapped response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := request.GetRequestID(ctx)
	switch dErrors.ToHTTPStatus(dErrors.CodeOf(err)) / 100 {
	case 4:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err,
		)
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
