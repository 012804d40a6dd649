package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

// Topic constants for the application
const (
	TopicOceanMeasurements = "ocean-measurements"
	TopicCatchReports      = "catch-reports"
	TopicAlerts            = "alerts"
)

// Envelope wraps every message the platform produces. The event ID makes
// duplicate deliveries traceable through the DLQ.
type Envelope struct {
	EventID   string          `json:"event_id"`
	Source    string          `json:"source"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Manager coordinates Kafka producers and consumers
type Manager struct {
	config           *config.KafkaConfig
	logger           *utils.Logger
	mainProducer     *Producer
	dlqProducer      *Producer
	consumers        map[string]*Consumer
	consumerCtx      context.Context
	consumerCancel   context.CancelFunc
	wg               sync.WaitGroup
	mu               sync.Mutex
	isRunning        bool
	messageProcessed chan struct{}
}

// NewManager creates a new Kafka manager
func NewManager(cfg *config.KafkaConfig, logger *utils.Logger) (*Manager, error) {
	kafkaLogger := logger.Named("kafka_manager")

	// Create main producer
	mainProducer, err := NewProducer(cfg, kafkaLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create main producer: %w", err)
	}

	// Create DLQ producer
	dlqProducer, err := NewProducer(cfg, kafkaLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create DLQ producer: %w", err)
	}

	// Create context for consumers
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:           cfg,
		logger:           kafkaLogger,
		mainProducer:     mainProducer,
		dlqProducer:      dlqProducer,
		consumers:        make(map[string]*Consumer),
		consumerCtx:      ctx,
		consumerCancel:   cancel,
		messageProcessed: make(chan struct{}, 100), // Buffer for processing signals
		isRunning:        false,
	}, nil
}

// Start initializes and starts all registered consumers
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return fmt.Errorf("kafka manager is already running")
	}

	// Start consumers
	for name, consumer := range m.consumers {
		m.logger.Info("Starting consumer", zap.String("name", name))
		if err := consumer.Start(m.consumerCtx); err != nil {
			m.logger.Error("Failed to start consumer",
				zap.String("name", name),
				zap.Error(err))
			// Stop any consumers that were already started
			m.stopAllConsumers()
			return fmt.Errorf("failed to start consumer %s: %w", name, err)
		}
	}

	// Start message processed monitor
	m.wg.Add(1)
	go m.monitorProcessing()

	m.isRunning = true
	m.logger.Info("Kafka manager started")
	return nil
}

// AddConsumer creates and registers a consumer with specific handlers
func (m *Manager) AddConsumer(name string, topics []string, handlers map[string][]MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return fmt.Errorf("cannot add consumer while manager is running")
	}

	// Check if consumer with this name already exists
	if _, exists := m.consumers[name]; exists {
		return fmt.Errorf("consumer with name %s already exists", name)
	}

	// Create consumer
	consumer, err := NewConsumer(m.config, m.logger, m.dlqProducer)
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", name, err)
	}

	// Register handlers
	for topic, topicHandlers := range handlers {
		for _, handler := range topicHandlers {
			consumer.RegisterHandler(topic, m.wrapHandler(handler))
		}
	}

	// Store consumer
	m.consumers[name] = consumer
	m.logger.Info("Added consumer",
		zap.String("name", name),
		zap.Strings("topics", topics))

	return nil
}

// wrapHandler wraps a message handler to signal when processing is complete
func (m *Manager) wrapHandler(handler MessageHandler) MessageHandler {
	return func(msg *kafka.Message) error {
		defer func() {
			select {
			case m.messageProcessed <- struct{}{}:
				// Signal sent
			default:
				// Channel buffer full, which is fine in high throughput
			}
		}()

		return handler(msg)
	}
}

// ProduceMessage sends a message to the specified topic
func (m *Manager) ProduceMessage(topic string, key string, value interface{}, headers map[string]string) error {
	message := &Message{
		Key:       key,
		Value:     value,
		Timestamp: time.Now(),
		Headers:   headers,
	}

	return m.mainProducer.Produce(topic, message)
}

// produceEnveloped wraps a payload in an Envelope and publishes it
func (m *Manager) produceEnveloped(topic, key, source string, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	envelope := Envelope{
		EventID:   uuid.NewString(),
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payloadBytes,
	}

	return m.ProduceMessage(topic, key, envelope, nil)
}

// ProduceOceanMeasurement publishes a monitoring-station reading
func (m *Manager) ProduceOceanMeasurement(station string, measurement interface{}) error {
	return m.produceEnveloped(TopicOceanMeasurements, station, station, measurement)
}

// ProduceCatchReport publishes a catch report keyed by fishing area
func (m *Manager) ProduceCatchReport(fishingArea string, report interface{}) error {
	return m.produceEnveloped(TopicCatchReports, fishingArea, fishingArea, report)
}

// ProduceAlert publishes a newly raised alert keyed by location
func (m *Manager) ProduceAlert(location string, alert interface{}) error {
	return m.produceEnveloped(TopicAlerts, location, "rule-engine", alert)
}

// EnvelopeHandler processes an unwrapped message envelope
type EnvelopeHandler func(eventID, source string, timestamp time.Time, payload json.RawMessage) error

// envelopeMessageHandler adapts an EnvelopeHandler to the raw message interface
func envelopeMessageHandler(handler EnvelopeHandler) MessageHandler {
	return func(msg *kafka.Message) error {
		var envelope Envelope
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			return fmt.Errorf("failed to unmarshal envelope: %w", err)
		}

		timestamp, err := time.Parse(time.RFC3339, envelope.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to parse envelope timestamp: %w", err)
		}

		return handler(envelope.EventID, envelope.Source, timestamp, envelope.Payload)
	}
}

// RegisterOceanMeasurementHandler registers a handler for station readings
func (m *Manager) RegisterOceanMeasurementHandler(name string, handler EnvelopeHandler) error {
	return m.AddConsumer(
		fmt.Sprintf("%s-ocean-measurements", name),
		[]string{TopicOceanMeasurements},
		map[string][]MessageHandler{
			TopicOceanMeasurements: {envelopeMessageHandler(handler)},
		},
	)
}

// RegisterCatchReportHandler registers a handler for catch reports
func (m *Manager) RegisterCatchReportHandler(name string, handler EnvelopeHandler) error {
	return m.AddConsumer(
		fmt.Sprintf("%s-catch-reports", name),
		[]string{TopicCatchReports},
		map[string][]MessageHandler{
			TopicCatchReports: {envelopeMessageHandler(handler)},
		},
	)
}

// monitorProcessing tracks and logs message processing metrics
func (m *Manager) monitorProcessing() {
	defer m.wg.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	messageCount := 0

	for {
		select {
		case <-m.consumerCtx.Done():
			m.logger.Info("Message processing monitor stopped")
			return

		case <-m.messageProcessed:
			messageCount++

		case <-ticker.C:
			if messageCount > 0 {
				m.logger.Info("Message processing statistics",
					zap.Int("processed_messages", messageCount),
					zap.String("interval", "1m"))
				messageCount = 0
			}
		}
	}
}

// stopAllConsumers stops all consumers
func (m *Manager) stopAllConsumers() {
	for name, consumer := range m.consumers {
		m.logger.Info("Stopping consumer", zap.String("name", name))
		consumer.Stop()
	}
}

// Stop stops the Kafka manager and all consumers
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isRunning {
		return fmt.Errorf("kafka manager is not running")
	}

	// Cancel consumer context
	m.consumerCancel()

	// Stop all consumers
	m.stopAllConsumers()

	// Wait for all goroutines to finish
	m.wg.Wait()

	// Flush and close producers
	m.mainProducer.Close()
	m.dlqProducer.Close()

	m.isRunning = false
	m.logger.Info("Kafka manager stopped")
	return nil
}

// IsRunning returns whether the Kafka manager is running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}
