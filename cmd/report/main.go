package main

import (
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"anastat/adapters/postgres"
	"anastat/internal/config"
	"anastat/internal/reportserver"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Report] No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Report] Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("[Report] Failed to connect to database: %v", err)
	}
	defer db.Close()

	app := reportserver.NewApp(postgres.NewRunRepository(db))
	if err := app.Start(reportserver.Config{Port: cfg.Report.Port}); err != nil {
		log.Fatalf("[Report] Server failed: %v", err)
	}
}
