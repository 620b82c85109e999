package middleware

import (
	"fmt"
	"net/http"

	"github.com/posbok/storefront/api/responses"
	pkgerrors "github.com/posbok/storefront/pkg/errors"
	"github.com/posbok/storefront/pkg/logger"
)

// Recoverer converts handler panics into 500 responses. A panic in one
// request must not take the daemon down; the UI keeps its last cart view and
// retries.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithField(ctx, "path", r.URL.Path)
					logg.Error(ctx, "panic recovered", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
