package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
	Environment  string `mapstructure:"environment"`
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers        string `mapstructure:"brokers"`
	ConsumerGroup  string `mapstructure:"consumer_group"`
	SecurityEnable bool   `mapstructure:"security_enable"`
	SecurityUser   string `mapstructure:"security_user"`
	SecurityPass   string `mapstructure:"security_pass"`
}

// ClassifierConfig holds configuration for the external species
// identification service
type ClassifierConfig struct {
	URL      string `mapstructure:"url"`
	APIToken string `mapstructure:"api_token"`
	Timeout  int    `mapstructure:"timeout"`
}

// ScoringConfig holds the tunable constants of the scoring engine. The
// deduction caps and the trend band are policy values, not derived numbers,
// so they live in configuration rather than in the formulas.
type ScoringConfig struct {
	ThreatWeight         float64 `mapstructure:"threat_weight"`
	ThreatCap            float64 `mapstructure:"threat_cap"`
	BiodiversityWeight   float64 `mapstructure:"biodiversity_weight"`
	BiodiversityCap      float64 `mapstructure:"biodiversity_cap"`
	AlertCap             float64 `mapstructure:"alert_cap"`
	TrendBand            float64 `mapstructure:"trend_band"`
	MetricsLookbackDays  int     `mapstructure:"metrics_lookback_days"`
	PressureLookbackDays int     `mapstructure:"pressure_lookback_days"`
	AlertLookbackDays    int     `mapstructure:"alert_lookback_days"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LoadConfig loads the application configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	// Set default configuration file path if not provided
	if configPath == "" {
		configPath = "./config"
	}

	// Initialize Viper
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	// Set environment variable prefix for overrides
	v.SetEnvPrefix("MARINE_WATCH")

	// Set environment variable separator for nested structs
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read configuration from file
	if err := v.ReadInConfig(); err != nil {
		// If the configuration file is not found, that's fine, we'll use defaults and env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	// Set up environment variable binding
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Unmarshal configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 15)  // seconds
	v.SetDefault("server.write_timeout", 15) // seconds
	v.SetDefault("server.idle_timeout", 60)  // seconds
	v.SetDefault("server.environment", "development")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "marine_watch")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")

	// Kafka defaults
	v.SetDefault("kafka.brokers", "kafka:9092")
	v.SetDefault("kafka.consumer_group", "marine-watch")
	v.SetDefault("kafka.security_enable", false)

	// Classifier defaults
	v.SetDefault("classifier.url", "http://classifier:8090")
	v.SetDefault("classifier.timeout", 30) // seconds

	// Scoring defaults. Each deduction is capped so that no single bad
	// category can zero the composite score on its own.
	v.SetDefault("scoring.threat_weight", 0.8)
	v.SetDefault("scoring.threat_cap", 40.0)
	v.SetDefault("scoring.biodiversity_weight", 0.3)
	v.SetDefault("scoring.biodiversity_cap", 30.0)
	v.SetDefault("scoring.alert_cap", 30.0)
	v.SetDefault("scoring.trend_band", 10.0) // percent
	v.SetDefault("scoring.metrics_lookback_days", 30)
	v.SetDefault("scoring.pressure_lookback_days", 90)
	v.SetDefault("scoring.alert_lookback_days", 90)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Validate database password is set
	if config.Database.Password == "" {
		// Check if it's available in environment variable
		dbPassword := os.Getenv("MARINE_WATCH_DATABASE_PASSWORD")
		if dbPassword == "" {
			if config.Server.Environment != "development" {
				return fmt.Errorf("database password is required in non-development environments")
			}
		} else {
			config.Database.Password = dbPassword
		}
	}

	// A non-positive cap or a negative band makes the formulas degenerate,
	// which is a configuration bug rather than a data condition.
	if config.Scoring.ThreatCap <= 0 || config.Scoring.BiodiversityCap <= 0 || config.Scoring.AlertCap <= 0 {
		return fmt.Errorf("scoring deduction caps must be positive")
	}
	if config.Scoring.TrendBand < 0 {
		return fmt.Errorf("scoring trend band must not be negative")
	}

	return nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.TimeZone)
}

// IsProduction returns true if the environment is production
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if the environment is development
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsTest returns true if the environment is test
func (c *ServerConfig) IsTest() bool {
	return c.Environment == "test"
}
