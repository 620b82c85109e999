package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/posbok/storefront/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags every request with an id and threads it through the logger
// context. Local UIs rarely send their own id, so one is minted per request;
// an incoming header wins so a UI can correlate its own traces.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
