// Command trials exports the cleaned trial-by-trial table as CSV.
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/banshee-data/training.report/internal/config"
	"github.com/banshee-data/training.report/internal/db"
	"github.com/banshee-data/training.report/internal/summary"
	"github.com/banshee-data/training.report/internal/trials"
)

func main() {
	configPath := flag.String("config", "", "path to study config JSON")
	dbPath := flag.String("db", "", "path to sqlite database (overrides config)")
	animals := flag.String("animals", "", "comma-separated animal ids (overrides config)")
	dateMin := flag.String("date-min", "", "window start YYYY-MM-DD (overrides config)")
	dateMax := flag.String("date-max", "", "window end YYYY-MM-DD (default today)")
	output := flag.String("o", "trials.csv", "output CSV path")
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

	rows, err := trials.NewFetcher(database).FetchTrainingData(animalIDs, window.Min, window.Max)
	if err != nil {
		log.Fatalf("failed to fetch trials: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *output, err)
	}
	defer f.Close()
	if err := trials.WriteTrials(f, rows); err != nil {
		log.Fatalf("failed to write CSV: %v", err)
	}
	log.Printf("✓ Wrote %d trials to %s", len(rows), *output)
}
