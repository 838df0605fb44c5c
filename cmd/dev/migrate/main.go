package main

import (
	"context"
	"fmt"
	"os"

	"paymentplan/pkg/config"
	"paymentplan/pkg/db"
)

func main() {
	cfg := config.Load()
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}

	// This uses DIRECT_URL if set (recommended behind a pooler).
	if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}

	// Sanity check: ensure the runtime connection can open (uses DATABASE_URL if set).
	// DSNs are not printed to avoid leaking secrets into logs.
	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	pool.Close()

	fmt.Println("migrations applied")
}
