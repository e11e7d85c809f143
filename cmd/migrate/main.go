package main

import (
	"context"
	"encoding/csv"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"anastat/adapters/postgres"
	"anastat/domain/dataset"
	"anastat/internal/migration"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [csv_import_dir]")
	}
	databaseURL := os.Args[1]

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Schema migration complete")

	if len(os.Args) < 3 {
		return
	}
	importDir := os.Args[2]

	files, err := findCSVFiles(importDir)
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", importDir, err)
	}
	log.Printf("Found %d CSV files to import", len(files))

	repo := postgres.NewDatasetRepository(db)
	imported := 0
	skipped := 0

	for _, file := range files {
		names, columns, err := loadColumns(file)
		if err != nil {
			log.Printf("Failed to load %s: %v", file, err)
			skipped++
			continue
		}

		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		for i, values := range columns {
			name := base
			if len(columns) > 1 {
				name = base + "/" + names[i]
			}

			ds := dataset.New(name, values)
			ds.Source = file
			if err := repo.Create(context.Background(), ds); err != nil {
				log.Printf("Failed to save dataset %s: %v", name, err)
				skipped++
				continue
			}
			imported++
		}
	}

	log.Printf("Import complete: %d datasets imported, %d skipped", imported, skipped)
}

func findCSVFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// loadColumns reads a CSV file into one dataset per column. A non-numeric
// first row names the columns; otherwise columns are named col1..colN.
func loadColumns(path string) ([]string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	var names []string
	start := 0
	if headerRow(rows[0]) {
		names = rows[0]
		start = 1
	} else {
		for i := range rows[0] {
			names = append(names, "col"+strconv.Itoa(i+1))
		}
	}

	columns := make([][]float64, len(names))
	for _, row := range rows[start:] {
		for j := 0; j < len(names) && j < len(row); j++ {
			cell := strings.TrimSpace(row[j])
			if cell == "" {
				columns[j] = append(columns[j], math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				columns[j] = append(columns[j], math.NaN())
				continue
			}
			columns[j] = append(columns[j], v)
		}
	}
	return names, columns, nil
}

func headerRow(row []string) bool {
	for _, cell := range row {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return false
		}
	}
	return true
}
