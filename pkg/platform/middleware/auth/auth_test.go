package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"finetrack/pkg/requestcontext"
	"finetrack/pkg/testutil"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) { return s.claims, s.err }

type AuthMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *AuthMiddlewareSuite) serve(v JWTValidator, header string, next http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/officers/me/fines", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	RequireAuth(v, s.logger)(next).ServeHTTP(rr, req)
	return rr
}

func (s *AuthMiddlewareSuite) TestRequireAuth() {
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	s.Run("missing header", func() {
		rr := s.serve(stubValidator{}, "", noop)
		s.Equal(http.StatusUnauthorized, rr.Code)
	})

	s.Run("invalid token", func() {
		rr := s.serve(stubValidator{err: errors.New("expired")}, "Bearer x", noop)
		s.Equal(http.StatusUnauthorized, rr.Code)
		s.Contains(rr.Body.String(), "Invalid or expired token")
	})

	s.Run("officer without officer id", func() {
		rr := s.serve(stubValidator{claims: &JWTClaims{UserID: "u", Role: "officer"}}, "Bearer x", noop)
		s.Equal(http.StatusUnauthorized, rr.Code)
	})

	s.Run("civilian with malformed identity code", func() {
		rr := s.serve(stubValidator{claims: &JWTClaims{UserID: "u", Role: "civilian", IdentityCode: "12"}}, "Bearer x", noop)
		s.Equal(http.StatusUnauthorized, rr.Code)
	})

	s.Run("civilian principal stored", func() {
		var got requestcontext.Principal
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			got, _ = requestcontext.PrincipalFrom(r.Context())
		})
		rr := s.serve(stubValidator{claims: &JWTClaims{UserID: "u", Role: "civilian", IdentityCode: "993090809v"}}, "Bearer x", next)
		s.Equal(http.StatusOK, rr.Code)
		s.Equal(requestcontext.RoleCivilian, got.Role)
		s.Equal("993090809V", got.IdentityCode.String())
	})
}

func (s *AuthMiddlewareSuite) TestRequireRole() {
	h := RequireRole(s.logger, requestcontext.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	s.Run("no principal", func() {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
		s.Equal(http.StatusUnauthorized, rr.Code)
	})

	s.Run("wrong role", func() {
		req := testutil.AsOfficer(httptest.NewRequest(http.MethodGet, "/admin/stats", nil), "p1")
		rr := testutil.DoRequest(h, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("civilian", func() {
		req := testutil.AsCivilian(httptest.NewRequest(http.MethodGet, "/admin/stats", nil), "993090809V")
		s.Equal(http.StatusForbidden, testutil.DoRequest(h, req).Code)
	})

	s.Run("allowed", func() {
		req := testutil.AsAdmin(httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
		assert.Equal(s.T(), http.StatusNoContent, testutil.DoRequest(h, req).Code)
	})
}
