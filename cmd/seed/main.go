package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"docentes/internal/config"
	"docentes/internal/db"
	"docentes/internal/logger"
	"docentes/internal/repository"
	"docentes/internal/seed"
	"docentes/internal/service"
	"docentes/internal/validation"
)

func main() {
	cfg := config.Load()

	source := flag.String("source", getenv("SEED_SOURCE", "seed/docentes.json"), "JSON file path or http(s) URL with an array of teachers")
	flag.Parse()

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", "driver", cfg.DBDriver, "error", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	ctx := context.Background()

	log.Info("fetching teachers", "source", *source)
	teachers, err := seed.Fetch(ctx, *source)
	if err != nil {
		log.Fatal("failed to fetch teachers", "error", err)
	}
	log.Info("fetched teachers", "count", len(teachers))

	// Seeding goes through the service so every business rule applies.
	svc := service.NewTeacherService(repository.NewTeacherRepository(gormDB), nil, 0)
	res, err := seed.Apply(ctx, svc, validation.New(), log, teachers)
	if err != nil {
		log.Fatal("seed failed", "error", err)
	}

	log.Info("seed completed",
		"created", res.Created,
		"existing", res.Existing,
		"rejected", res.Rejected,
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
