// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"basler/crawler/internal/config"
)

// Setup applies the configured level and formatter to the standard logrus logger.
func Setup(cfg config.LoggingConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return nil
}
