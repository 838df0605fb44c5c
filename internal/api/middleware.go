package api

import (
	"net/http"
	"strings"
	"time"

	"paymentplan/pkg/config"
	"paymentplan/pkg/session"
)

// SessionAuth resolves the calling tenant from a bearer session token.
//
// Expected header:
// - Authorization: Bearer <JWT>
//
// Outside prod, a missing Authorization header falls back to X-Tenant-ID so
// local testing does not need a token issuer.
func SessionAuth(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token := strings.TrimSpace(authz[7:])
				vs, err := session.Verify(token, cfg.Session.Audience, cfg.Session.Secret, time.Now())
				if err != nil {
					WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
					return
				}
				actor := vs.Subject
				if actor == "" {
					actor = "tenant"
				}
				next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), &Tenant{ID: vs.TenantID, Actor: actor})))
				return
			}

			// Dev fallback
			if cfg.AppEnv != "prod" {
				tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-ID"))
				if tenantID != "" {
					next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), &Tenant{ID: tenantID, Actor: "dev"})))
					return
				}
			}

			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session token")
		})
	}
}
