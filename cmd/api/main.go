package main

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"anastat/adapters/mathexpr"
	"anastat/adapters/postgres"
	"anastat/adapters/stats/uncertainty"
	"anastat/app"
	"anastat/internal/api"
	"anastat/internal/config"
	"anastat/internal/migration"
	"anastat/internal/testkit"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[API] No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("[API] Failed to run migrations: %v", err)
	}

	analysis := app.NewAnalysisService(testkit.NewRNGAdapter())
	propagation := uncertainty.NewEngine(mathexpr.NewAdapter())

	server := api.NewServer(
		analysis,
		propagation,
		postgres.NewDatasetRepository(db),
		postgres.NewRunRepository(db),
		cfg.Server.GinMode,
	)
	if err := server.Run(cfg.Server.Port); err != nil {
		log.Fatalf("[API] Server failed: %v", err)
	}
}
