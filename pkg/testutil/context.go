package testutil

import (
	"net/http"

	id "finetrack/pkg/domain"
	"finetrack/pkg/requestcontext"
)

// WithPrincipal stores p in the request context, the way RequireAuth does for
// a valid token.
func WithPrincipal(req *http.Request, p requestcontext.Principal) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
}

// AsOfficer authenticates req as the given officer.
func AsOfficer(req *http.Request, officerID string) *http.Request {
	return WithPrincipal(req, requestcontext.Principal{
		UserID:    "user-" + officerID,
		Role:      requestcontext.RoleOfficer,
		OfficerID: id.OfficerID(officerID),
	})
}

// AsCivilian authenticates req as the civilian holding code.
func AsCivilian(req *http.Request, code string) *http.Request {
	return WithPrincipal(req, requestcontext.Principal{
		UserID:       "user-" + code,
		Role:         requestcontext.RoleCivilian,
		IdentityCode: id.IdentityCode(code),
	})
}

// AsAdmin authenticates req as an administrator.
func AsAdmin(req *http.Request) *http.Request {
	return WithPrincipal(req, requestcontext.Principal{UserID: "user-admin", Role: requestcontext.RoleAdmin})
}
