package handlers

import (
	"net/http"

	"github.com/posbok/storefront/api/responses"
	"github.com/posbok/storefront/pkg/config"
	"github.com/posbok/storefront/pkg/logger"
)

func Healthz(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if logg != nil {
			ctx := logg.WithField(r.Context(), "env", cfg.App.Env)
			logg.Info(ctx, "health.check")
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
