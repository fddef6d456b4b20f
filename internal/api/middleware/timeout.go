package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds each request's context to the given duration. Model inference
// and store queries all take the request context, so they are cancelled together
// when the deadline passes. Use 0 or negative to disable.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
