package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"finetrack/pkg/platform/httputil"
	request "finetrack/pkg/platform/middleware/request"
	"finetrack/pkg/requestcontext"
)

// Policy is the allowance for one class of endpoint.
type Policy struct {
	Class  string
	Limit  int
	Window time.Duration
}

type exceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// PerCaller limits requests by authenticated user, falling back to client IP.
// It must run after RequireAuth. Store failures let the request through.
func PerCaller(store Store, policy Policy, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller := requestcontext.UserID(ctx)
			if caller == "" {
				caller = "ip:" + requestcontext.ClientIP(ctx)
			}

			result, err := store.Allow(ctx, policy.Class+":"+caller, policy.Limit, policy.Window)
			if err != nil {
				logger.ErrorContext(ctx, "failed to check rate limit",
					"request_id", request.GetRequestID(ctx),
					"class", policy.Class,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				logger.WarnContext(ctx, "rate limit exceeded",
					"request_id", request.GetRequestID(ctx),
					"class", policy.Class,
					"user_id", requestcontext.UserID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, exceededResponse{
					Error:      "rate_limit_exceeded",
					Message:    "Too many requests for this operation. Please try again later.",
					RetryAfter: result.RetryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
