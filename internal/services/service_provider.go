package services

import (
	"context"
	"fmt"

	"github.com/marine-watch/backend/internal/classifier"
	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/db"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/kafka"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

// ServiceProvider manages all services for the application
type ServiceProvider struct {
	logger                *utils.Logger
	config                *config.Config
	database              *db.Database
	kafkaManager          *kafka.Manager
	classifierClient      *classifier.Client
	ingestHandler         *IngestHandler
	metricsService        *MetricsService
	oceanService          *OceanService
	fisheriesService      *FisheriesService
	sustainabilityService *SustainabilityService
	speciesService        *SpeciesService
	alertRuleService      *AlertRuleService
	notificationService   *NotificationService
}

// NewServiceProvider creates a new service provider
func NewServiceProvider(
	logger *utils.Logger,
	config *config.Config,
	database *db.Database,
) *ServiceProvider {
	return &ServiceProvider{
		logger:   logger.Named("services"),
		config:   config,
		database: database,
	}
}

// Initialize initializes all services
func (sp *ServiceProvider) Initialize(ctx context.Context) error {
	var err error

	// Initialize Kafka manager
	sp.kafkaManager, err = kafka.NewManager(&sp.config.Kafka, sp.logger)
	if err != nil {
		return fmt.Errorf("failed to create Kafka manager: %w", err)
	}

	// Initialize classifier client
	sp.classifierClient = classifier.NewClient(&sp.config.Classifier, sp.logger)

	// Create repository factory
	repoFactory := repository.NewRepositoryFactory(sp.database.DB)

	// Initialize NotificationService
	sp.notificationService = NewNotificationService(sp.logger)
	sp.logger.Info("Notification service initialized")

	// Initialize domain services
	sp.metricsService = NewMetricsService(repoFactory, &sp.config.Scoring, sp.logger)
	sp.oceanService = NewOceanService(repoFactory, &sp.config.Scoring, sp.notificationService, sp.logger)
	sp.fisheriesService = NewFisheriesService(repoFactory, &sp.config.Scoring, sp.logger)
	sp.sustainabilityService = NewSustainabilityService(repoFactory, &sp.config.Scoring, sp.logger)
	sp.speciesService = NewSpeciesService(repoFactory, sp.classifierClient, sp.notificationService, sp.logger)
	sp.alertRuleService = NewAlertRuleService(repoFactory, &sp.config.Scoring, sp.kafkaManager, sp.notificationService, sp.logger)
	sp.logger.Info("Domain services initialized")

	// Initialize ingest handler
	sp.ingestHandler = NewIngestHandler(
		sp.logger,
		sp.kafkaManager,
		repoFactory,
		sp.oceanService,
		sp.fisheriesService,
	)
	if err = sp.ingestHandler.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize ingest handler: %w", err)
	}

	// Start Kafka manager
	if err = sp.kafkaManager.Start(); err != nil {
		return fmt.Errorf("failed to start Kafka manager: %w", err)
	}
	sp.logger.Info("Kafka manager started")

	sp.logger.Info("All services initialized successfully")
	return nil
}

// Shutdown performs a graceful shutdown of all services
func (sp *ServiceProvider) Shutdown() error {
	sp.logger.Info("Shutting down services")

	// Stop Kafka manager if initialized
	if sp.kafkaManager != nil && sp.kafkaManager.IsRunning() {
		sp.logger.Info("Stopping Kafka manager")
		if err := sp.kafkaManager.Stop(); err != nil {
			sp.logger.Error("Failed to stop Kafka manager", zap.Error(err))
		}
	}

	sp.logger.Info("Services shut down successfully")
	return nil
}

// GetKafkaManager returns the Kafka manager
func (sp *ServiceProvider) GetKafkaManager() *kafka.Manager {
	return sp.kafkaManager
}

// GetMetricsService returns the metrics service
func (sp *ServiceProvider) GetMetricsService() *MetricsService {
	return sp.metricsService
}

// GetOceanService returns the ocean service
func (sp *ServiceProvider) GetOceanService() *OceanService {
	return sp.oceanService
}

// GetFisheriesService returns the fisheries service
func (sp *ServiceProvider) GetFisheriesService() *FisheriesService {
	return sp.fisheriesService
}

// GetSustainabilityService returns the sustainability service
func (sp *ServiceProvider) GetSustainabilityService() *SustainabilityService {
	return sp.sustainabilityService
}

// GetSpeciesService returns the species service
func (sp *ServiceProvider) GetSpeciesService() *SpeciesService {
	return sp.speciesService
}

// GetAlertRuleService returns the alert rule service
func (sp *ServiceProvider) GetAlertRuleService() *AlertRuleService {
	return sp.alertRuleService
}

// GetNotificationService returns the notification service
func (sp *ServiceProvider) GetNotificationService() *NotificationService {
	return sp.notificationService
}
