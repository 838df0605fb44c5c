package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paymentplan/internal/api"
	"paymentplan/internal/cache"
	"paymentplan/internal/plan"
	"paymentplan/pkg/config"
)

type Dependencies struct {
	Cfg   config.Config
	DB    *pgxpool.Pool
	Cache cache.Cache
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	planService := &plan.Service{
		Cache:    deps.Cache,
		CacheTTL: time.Duration(deps.Cfg.Redis.CacheTTLSeconds) * time.Second,
		Limits:   deps.Cfg.Limits,
	}
	planHandlers := plan.Handlers{
		Cfg:     deps.Cfg,
		DB:      deps.DB,
		Plans:   plan.NewRepository(deps.DB),
		Service: planService,
	}

	// v1
	r.Route("/v1", func(r chi.Router) {
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Tenant-ID"},
			MaxAgeSeconds:  600,
		}))

		// Stateless preview; no tenant needed.
		r.Post("/schedules/calculate", planHandlers.Calculate)

		// Stored plans (tenant-scoped)
		r.Group(func(r chi.Router) {
			r.Use(api.SessionAuth(deps.Cfg))

			r.Get("/plans", planHandlers.List)
			r.Post("/plans", planHandlers.Create)
			r.Get("/plans/{id}", planHandlers.Get)
			r.Get("/plans/{id}/events", planHandlers.Events)
		})
	})

	return r
}
