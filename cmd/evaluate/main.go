package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/db"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

// One-shot alert rule evaluation, intended for cron-style scheduling next to
// the long-running server.
func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to the configuration directory")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	logger, err := utils.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize database
	database, err := db.NewDatabase(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	// The rule engine publishes to Kafka and the websocket hub when those are
	// wired in; a one-shot run writes to the database only.
	repos := repository.NewRepositoryFactory(database.DB)
	ruleService := services.NewAlertRuleService(repos, &cfg.Scoring, nil, nil, logger)

	result, err := ruleService.RunAlertRules(time.Now().UTC())
	if err != nil {
		logger.Fatal("Alert rule evaluation failed", zap.Error(err))
	}

	for _, alert := range result.Created {
		logger.Info("Alert raised",
			zap.String("type", alert.AlertType),
			zap.String("severity", alert.Severity),
			zap.String("location", alert.Location),
			zap.String("subject", alert.SubjectKey),
		)
	}

	logger.Info("Alert rule evaluation completed",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped_existing", result.SkippedExisting),
	)
}
