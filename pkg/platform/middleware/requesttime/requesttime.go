// Package requesttime pins a single "now" for each HTTP request so that the
// issuance timestamp and the dashboard's "today" agree within one call.
package requesttime

import (
	"net/http"
	"time"

	"finetrack/pkg/requestcontext"
)

// Middleware captures the current time in loc and stores it in the context.
// A nil loc means UTC.
func Middleware(loc *time.Location) func(http.Handler) http.Handler {
	if loc == nil {
		loc = time.UTC
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), time.Now().In(loc))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
