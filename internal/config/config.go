// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config contains application configuration.
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	AuthEnabled bool
	JWTSecret   string
	JWTExpiry   time.Duration

	RequestTimeout time.Duration
	// RateLimit is the number of requests a client may make per minute.
	RateLimit int

	MQTTBroker string
	MQTTTopic  string

	LogLevel  string
	LogFormat string

	AnalystPassword   string
	ManagerPassword   string
	LogisticsPassword string
}

// Load reads configuration from .env and environment variables. Variables
// already set in the environment win over .env entries.
func Load() (Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "3000"),
		MongoURI:          getEnv("MONGO_URI", getEnv("MONGODB_URL", "mongodb://localhost:27017")),
		MongoDB:           getEnv("MONGO_DB", "fleetTracking"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		MQTTBroker:        os.Getenv("MQTT_BROKER"),
		MQTTTopic:         getEnv("MQTT_TOPIC", "fleet/+/telemetry"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		AnalystPassword:   os.Getenv("ANALYST_PASSWORD"),
		ManagerPassword:   os.Getenv("MANAGER_PASSWORD"),
		LogisticsPassword: os.Getenv("LOGISTICS_PASSWORD"),
	}

	var err error
	if cfg.AuthEnabled, err = getBool("AUTH_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 100); err != nil {
		return Config{}, err
	}

	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	if cfg.RateLimit <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT must be positive, got %d", cfg.RateLimit)
	}
	return cfg, nil
}

// ConfigureLogging applies LogLevel and LogFormat to the standard logrus
// logger.
func (c Config) ConfigureLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	logrus.SetLevel(level)
	switch strings.ToLower(c.LogFormat) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("LOG_FORMAT: unknown format %q", c.LogFormat)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getInt(key string, defaultValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
