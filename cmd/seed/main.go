package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/kafka"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

var stations = []struct {
	name     string
	lat, lon float64
}{
	{"Oslofjord", 59.9, 10.7},
	{"North Atlantic Buoy 12", 55.1, -30.4},
	{"Coral Triangle Station", -2.5, 133.3},
	{"Baltic Monitor 3", 56.8, 19.2},
}

var catches = []struct {
	scientificName string
	commonName     string
	area           string
	quota          float64
}{
	{"Gadus morhua", "Atlantic cod", "North Sea", 250},
	{"Thunnus thynnus", "Atlantic bluefin tuna", "Mediterranean", 80},
	{"Clupea harengus", "Atlantic herring", "Baltic Sea", 400},
	{"Scomber scombrus", "Atlantic mackerel", "North Atlantic", 300},
}

func floatPtr(v float64) *float64 { return &v }

// Publishes synthetic measurements and catch reports onto the ingest topics,
// exercising the same path real station and vessel feeds use.
func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to the configuration directory")
	messageCount := flag.Int("messages", 20, "Number of messages per topic")
	interval := flag.Int("interval", 1, "Interval between messages in seconds")
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

	// Create Kafka manager
	kafkaManager, err := kafka.NewManager(&cfg.Kafka, logger)
	if err != nil {
		logger.Fatal("Failed to create Kafka manager", zap.Error(err))
	}
	if err := kafkaManager.Start(); err != nil {
		logger.Fatal("Failed to start Kafka manager", zap.Error(err))
	}
	// Stop flushes the producers before exit
	defer kafkaManager.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < *messageCount; i++ {
		station := stations[rng.Intn(len(stations))]
		measurement := map[string]interface{}{
			"latitude":      station.lat,
			"longitude":     station.lon,
			"temperature":   5 + rng.Float64()*20,
			"salinity":      floatPtr(30 + rng.Float64()*8),
			"ph_level":      floatPtr(7.6 + rng.Float64()*0.8),
			"oxygen_level":  floatPtr(4 + rng.Float64()*6),
			"location_name": station.name,
			"recorded_at":   time.Now().UTC().Format(time.RFC3339),
		}
		if err := kafkaManager.ProduceOceanMeasurement(station.name, measurement); err != nil {
			logger.Error("Failed to produce measurement", zap.Error(err))
		} else {
			logger.Info("Produced ocean measurement", zap.String("station", station.name))
		}

		c := catches[rng.Intn(len(catches))]
		report := map[string]interface{}{
			"scientific_name":      c.scientificName,
			"common_name":          c.commonName,
			"catch_amount":         10 + rng.Float64()*c.quota*1.4,
			"fishing_area":         c.area,
			"fishing_method":       "trawl",
			"vessel_type":          "commercial",
			"quota_limit":          floatPtr(c.quota),
			"sustainability_score": floatPtr(rng.Float64() * 100),
			"caught_at":            time.Now().UTC().Format(time.RFC3339),
		}
		if err := kafkaManager.ProduceCatchReport(c.area, report); err != nil {
			logger.Error("Failed to produce catch report", zap.Error(err))
		} else {
			logger.Info("Produced catch report", zap.String("area", c.area), zap.String("species", c.scientificName))
		}

		time.Sleep(time.Duration(*interval) * time.Second)
	}

	logger.Info("Seeding completed", zap.Int("messages_per_topic", *messageCount))
}
