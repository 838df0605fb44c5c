package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paymentplan/internal/cache"
	"paymentplan/internal/httpapi"
	"paymentplan/internal/tracing"
	"paymentplan/pkg/config"
	"paymentplan/pkg/db"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	var planCache cache.Cache = cache.NewMemoryCache(cfg.Redis.MaxMemoryEntries)
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(ctx); err != nil {
			log.Printf("redis unavailable at %s, using in-process cache: %v", cfg.Redis.Addr, err)
			_ = rc.Close()
		} else {
			defer rc.Close()
			planCache = rc
		}
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:   cfg,
		DB:    conn,
		Cache: planCache,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = shutdownTracing(shutdownCtx)
}
