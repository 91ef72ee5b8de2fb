package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"transit/internal/service"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Kafka    KafkaConfig
	Maps     MapsConfig
	Dispatch service.DispatchConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// KafkaConfig holds the driver notification stream configuration.
// An empty broker list disables publishing; notifications are then only logged.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// MapsConfig holds the geocoding provider configuration. An empty API key
// disables the provider; only pre-resolved addresses geocode successfully.
type MapsConfig struct {
	APIKey          string
	ResolverTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	dispatch := service.DefaultDispatchConfig()
	dispatch.MaxRounds = getIntEnv("DISPATCH_MAX_ROUNDS", dispatch.MaxRounds)
	dispatch.SaturationThreshold = getIntEnv("DISPATCH_SATURATION_THRESHOLD", dispatch.SaturationThreshold)
	dispatch.RadiusStepKm = getFloatEnv("DISPATCH_RADIUS_STEP_KM", dispatch.RadiusStepKm)
	dispatch.PositionWindow = getDurationEnv("DISPATCH_POSITION_WINDOW", dispatch.PositionWindow)
	dispatch.AssignmentDeadline = getDurationEnv("DISPATCH_ASSIGNMENT_DEADLINE", dispatch.AssignmentDeadline)
	dispatch.RoundInterval = getDurationEnv("DISPATCH_ROUND_INTERVAL", dispatch.RoundInterval)
	dispatch.CandidateLimit = getIntEnv("DISPATCH_CANDIDATE_LIMIT", dispatch.CandidateLimit)
	dispatch.LockTTL = getDurationEnv("DISPATCH_LOCK_TTL", dispatch.LockTTL)

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "transit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "transit-dispatch"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Kafka: KafkaConfig{
			Brokers: getSliceEnv("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_NOTIFICATIONS_TOPIC", "driver-notifications"),
		},
		Maps: MapsConfig{
			APIKey:          getEnv("MAPS_API_KEY", ""),
			ResolverTimeout: getDurationEnv("MAPS_RESOLVER_TIMEOUT", 3*time.Second),
		},
		Dispatch: dispatch,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getSliceEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
