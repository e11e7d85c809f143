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
	"anastat/internal/errors"
	"anastat/internal/migration"
	"anastat/internal/reportserver"
	"anastat/internal/testkit"
)

// initDatabase connects to PostgreSQL and brings the schema up to date.
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	runs := postgres.NewRunRepository(db)

	analysis := app.NewAnalysisService(testkit.NewRNGAdapter())
	propagation := uncertainty.NewEngine(mathexpr.NewAdapter())

	// Report server runs alongside the API on its own port.
	go func() {
		reports := reportserver.NewApp(runs)
		if err := reports.Start(reportserver.Config{Port: cfg.Report.Port}); err != nil {
			log.Printf("[Report] Server failed: %v", err)
		}
	}()

	server := api.NewServer(
		analysis,
		propagation,
		postgres.NewDatasetRepository(db),
		runs,
		cfg.Server.GinMode,
	)
	log.Printf("Starting anastat server on port %s", cfg.Server.Port)
	if err := server.Run(cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
