package main

import (
	"context"
	"flag"

	log "github.com/sirupsen/logrus"

	"basler/crawler/internal/config"
	"basler/crawler/internal/container"
	"basler/crawler/internal/export"
	"basler/crawler/internal/logging"
	"basler/crawler/internal/repository"
)

func main() {
	configPath := flag.String("config", "", "path to the config file (default ./config.yaml)")
	output := flag.String("out", "", "xlsx file to write (default export.path)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	path := cfg.Export.Path
	if *output != "" {
		path = *output
	}

	ctx := context.Background()
	db, err := container.NewDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	count, err := export.ExportProductLinks(ctx, repository.NewProductLinkRepository(db), path)
	if err != nil {
		db.Close()
		log.Fatalf("Export failed: %v", err)
	}

	log.Infof("✅ Wrote %d product links to %s", count, path)
}
