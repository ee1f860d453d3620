// Command summarize builds the daily summary table for a study and writes
// it as CSV, optionally with the PNG figure set per animal.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/training.report/internal/charts"
	"github.com/banshee-data/training.report/internal/config"
	"github.com/banshee-data/training.report/internal/db"
	"github.com/banshee-data/training.report/internal/summary"
)

func main() {
	configPath := flag.String("config", "", "path to study config JSON")
	dbPath := flag.String("db", "", "path to sqlite database (overrides config)")
	animals := flag.String("animals", "", "comma-separated animal ids (overrides config)")
	dateMin := flag.String("date-min", "", "window start YYYY-MM-DD (overrides config)")
	dateMax := flag.String("date-max", "", "window end YYYY-MM-DD (default today)")
	output := flag.String("o", "daily_summaries.csv", "output CSV path")
	plots := flag.Bool("plots", false, "also write PNG figures next to the CSV")
	flag.Parse()

	cfg := config.EmptyStudyConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadStudyConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	animalIDs := cfg.AnimalIDs
	if *animals != "" {
		animalIDs = strings.Split(*animals, ",")
	}
	if len(animalIDs) == 0 {
		log.Fatal("no animals: pass -animals or configure animal_ids")
	}

	dbFile := cfg.GetDBPath()
	if *dbPath != "" {
		dbFile = *dbPath
	}
	database, err := db.OpenDB(dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	min := cfg.GetDateMin()
	if *dateMin != "" {
		min = *dateMin
	}
	window, err := summary.NewDateWindow(min, *dateMax, nil)
	if err != nil {
		log.Fatalf("bad date window: %v", err)
	}

	rows, err := summary.NewBuilder(database, cfg).BuildRange(animalIDs, window.Min, window.Max)
	if err != nil {
		log.Fatalf("failed to build summaries: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *output, err)
	}
	defer f.Close()
	if err := summary.WriteSummaries(f, rows); err != nil {
		log.Fatalf("failed to write CSV: %v", err)
	}
	log.Printf("✓ Wrote %d rows to %s", len(rows), *output)

	if !*plots {
		return
	}
	plotDir := filepath.Dir(*output)
	for _, animal := range animalIDs {
		var animalRows []summary.DailySummary
		for _, row := range rows {
			if row.AnimalID == animal {
				animalRows = append(animalRows, row)
			}
		}
		if len(animalRows) == 0 {
			continue
		}
		files, err := charts.SaveSummaryPlots(plotDir, animal, animalRows)
		if err != nil {
			log.Fatalf("failed to plot %s: %v", animal, err)
		}
		log.Printf("✓ Wrote %d figures for %s", len(files), animal)
	}
}
