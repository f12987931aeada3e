package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"finetrack/internal/fines/service"
	"finetrack/internal/fines/store"
	"finetrack/internal/payment"
	"finetrack/internal/ratelimit"
	"finetrack/pkg/platform/audit/publishers/compliance"
	auditmemory "finetrack/pkg/platform/audit/store/memory"
	authmw "finetrack/pkg/platform/middleware/auth"
)

// tokenValidator maps fixed bearer tokens to claims.
type tokenValidator map[string]*authmw.JWTClaims

func (v tokenValidator) ValidateToken(token string) (*authmw.JWTClaims, error) {
	if c, ok := v[token]; ok {
		return c, nil
	}
	return nil, errors.New("unknown token")
}

var tokens = tokenValidator{
	"officer":  {UserID: "u-officer", Role: "officer", OfficerID: "OFFICER-01"},
	"civilian": {UserID: "u-nimal", Role: "civilian", IdentityCode: "199012345v"},
	"admin":    {UserID: "u-admin", Role: "admin"},
}

type HandlerSuite struct {
	suite.Suite
	router *chi.Mux
	svc    *service.Service
	audit  *auditmemory.InMemoryStore
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	s.Require().NoError(store.Seed(ctx, st, time.Now().UTC()))

	checkout, err := payment.NewHostedCheckout("https://pay.example.com/checkout", "https://app.example.com/paid", "")
	s.Require().NoError(err)

	s.audit = auditmemory.NewInMemoryStore()
	svc, err := service.New(st, st, st, compliance.New(s.audit),
		service.WithPaymentLedger(st),
		service.WithPaymentGateway(checkout),
		service.WithLocation(time.UTC),
	)
	s.Require().NoError(err)
	s.svc = svc

	s.router = chi.NewRouter()
	New(svc, tokens, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v))
}

func (s *HandlerSuite) TestAuthorization() {
	s.Run("no token", func() {
		s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/offences", "", "").Code)
	})
	s.Run("civilian cannot issue", func() {
		s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/fines", "civilian", `{}`).Code)
	})
	s.Run("officer cannot read dashboard", func() {
		s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/admin/stats", "officer", "").Code)
	})
}

func (s *HandlerSuite) TestMatchIdentity() {
	rec := s.do(http.MethodGet, "/identity/match?q=199012345v", "officer", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Candidates []struct {
			IdentityCode string `json:"identityCode"`
		} `json:"candidates"`
		ExactMatch *struct {
			DisplayName string `json:"displayName"`
		} `json:"exactMatch"`
	}
	s.decode(rec, &body)
	s.Len(body.Candidates, 1)
	s.Require().NotNil(body.ExactMatch)
	s.Equal("Nimal Perera", body.ExactMatch.DisplayName)
}

func (s *HandlerSuite) TestMatchIdentityRateLimited() {
	s.router = chi.NewRouter()
	New(s.svc, tokens, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithMatchLimit(ratelimit.NewInMemoryStore(), 2, time.Minute),
	).Register(s.router)

	for range 2 {
		s.Equal(http.StatusOK, s.do(http.MethodGet, "/identity/match?q=sun", "officer", "").Code)
	}
	rec := s.do(http.MethodGet, "/identity/match?q=sun", "officer", "")
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.NotEmpty(rec.Header().Get("Retry-After"))

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/offences", "officer", "").Code)
}

func (s *HandlerSuite) TestListOffences() {
	rec := s.do(http.MethodGet, "/offences", "officer", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var body offencesResponse
	s.decode(rec, &body)
	s.Len(body.Offences, 4)
}

func (s *HandlerSuite) TestIssueFine() {
	s.Run("created with autofilled name and token officer", func() {
		rec := s.do(http.MethodPost, "/fines", "officer",
			`{"civilianIdentityCode":"200134567x","offenceId":"OFF-002","issueLocation":"Kandy","officerId":"SOMEONE-ELSE"}`)
		s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

		var body map[string]any
		s.decode(rec, &body)
		s.Equal("Sunil Fernando", body["civilianDisplayName"])
		s.Equal("OFFICER-01", body["officerId"])
		s.Equal(false, body["isPaid"])
		s.NotEmpty(body["fineId"])
	})

	s.Run("bad identity code format", func() {
		rec := s.do(http.MethodPost, "/fines", "officer", `{"civilianIdentityCode":"12345","offenceId":"OFF-002","issueLocation":"Kandy"}`)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Contains(rec.Body.String(), "invalid_format")
	})

	s.Run("missing fields are listed", func() {
		rec := s.do(http.MethodPost, "/fines", "officer", `{"civilianIdentityCode":"999999999V"}`)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		var body struct {
			Error  string   `json:"error"`
			Fields []string `json:"fields"`
		}
		s.decode(rec, &body)
		s.Equal("missing_fields", body.Error)
		s.Equal([]string{"civilianDisplayName", "issueLocation", "offenceId"}, body.Fields)
	})

	s.Run("malformed json", func() {
		s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/fines", "officer", `{`).Code)
	})
}

func (s *HandlerSuite) TestOfficerFines() {
	rec := s.do(http.MethodGet, "/officers/me/fines", "officer", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var report service.FineReport
	s.decode(rec, &report)
	s.Len(report.Fines, 2)
	for _, f := range report.Fines {
		s.Equal("OFFICER-01", f.OfficerID.String())
	}
}

func (s *HandlerSuite) TestCivilianFines() {
	rec := s.do(http.MethodGet, "/civilians/me/fines", "civilian", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var report service.FineReport
	s.decode(rec, &report)
	s.Len(report.Fines, 2)
	s.Equal(1, report.UnpaidCount)
	s.Equal("3000", report.Outstanding.String())
}

func (s *HandlerSuite) TestPay() {
	s.Run("redirects to checkout", func() {
		rec := s.do(http.MethodPost, "/civilians/me/fines/FINE-0001/pay", "civilian", "")
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		var intent service.PaymentIntent
		s.decode(rec, &intent)
		s.Equal("FINE-0001", intent.FineID.String())
		s.True(strings.HasPrefix(intent.RedirectURL, "https://pay.example.com/checkout?"))
	})

	s.Run("already paid", func() {
		s.Equal(http.StatusConflict, s.do(http.MethodPost, "/civilians/me/fines/FINE-0003/pay", "civilian", "").Code)
	})

	s.Run("someone else's fine", func() {
		s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/civilians/me/fines/FINE-0002/pay", "civilian", "").Code)
	})

	s.Run("unknown fine", func() {
		s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/civilians/me/fines/FINE-9999/pay", "civilian", "").Code)
	})
}

func (s *HandlerSuite) TestAdmin() {
	s.Run("all fines", func() {
		rec := s.do(http.MethodGet, "/admin/fines", "admin", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		var report service.FineReport
		s.decode(rec, &report)
		s.Len(report.Fines, 3)
		s.False(report.Partial)
	})

	s.Run("stats", func() {
		rec := s.do(http.MethodGet, "/admin/stats", "admin", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		var report service.DashboardReport
		s.decode(rec, &report)
		s.Equal(3, report.Stats.Total)
		s.Equal(1, report.CourtIssued)
		s.Equal(2, report.Stats.Unpaid)
	})

	s.Run("export is an attachment", func() {
		rec := s.do(http.MethodGet, "/admin/stats/export", "admin", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Header().Get("Content-Disposition"), ExportFilename)
		s.Contains(rec.Body.String(), `"stats"`)
	})
}
