// Package requesttime pins one "now" per request so the voucher sweep, window
// validation and receipt expiry checks all agree.
package requesttime

import (
	"net/http"
	"time"

	"backupauth/pkg/requestcontext"
)

// Middleware stamps each request with the wall clock.
var Middleware = New(time.Now)

// New stamps each request with clock(). Tests pass a fixed clock to pin the
// redemption window.
func New(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), clock())))
		})
	}
}
