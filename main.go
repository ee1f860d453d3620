// Command trainingd serves the training-study summary API: reconciled
// daily summaries, cleaned trial exports, charts, and admin/debug routes.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/banshee-data/training.report/internal/config"
	"github.com/banshee-data/training.report/internal/db"
	"github.com/banshee-data/training.report/internal/version"
)

var (
	devMode     = flag.Bool("dev", false, "Run in dev mode")
	listen      = flag.String("listen", ":8080", "Listen address")
	configPath  = flag.String("config", "", "Path to study config JSON (optional)")
	dbPath      = flag.String("db", "", "Path to sqlite database (overrides config)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		log.Printf("trainingd %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.EmptyStudyConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadStudyConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	dbFile := cfg.GetDBPath()
	if *dbPath != "" {
		dbFile = *dbPath
	}

	db.DevMode = *devMode

	// migrate subcommands run standalone and exit
	if args := flag.Args(); len(args) > 0 && args[0] == "migrate" {
		db.RunMigrateCommand(args[1:], dbFile)
		return
	}

	database, err := db.NewDB(dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runServer(ctx, *listen, database, cfg); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}
