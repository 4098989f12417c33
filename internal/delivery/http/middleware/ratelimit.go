package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"invitationadmin/internal/delivery/http/helpers"
)

// RateLimit limits each client IP to limit requests per window on the routes it wraps.
// A non-positive limit disables limiting.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			helpers.WriteJSONError(w, http.StatusTooManyRequests, helpers.ErrCodeRateLimited, "too many requests")
		}),
	)
}
