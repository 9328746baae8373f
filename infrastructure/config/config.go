package config

import (
	"fmt"
	"os"
	"strconv"
)

// StateBuilderConfig holds tunables for context pack builds
type StateBuilderConfig struct {
	// MaxNeurons is the default size cap for a context pack
	MaxNeurons int
	// MinRelevanceScore is the default score cutoff for inclusion
	MinRelevanceScore float64
	// TraversalDepth bounds the synapse expansion around a project anchor
	TraversalDepth int
	// CandidateCap bounds the ranking input on very large graphs
	CandidateCap int
	// WeightsFile optionally points at a YAML file with scoring weights;
	// when set, the file is watched and reloaded on change
	WeightsFile string
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	EventBusName  string

	// Lambda configuration
	IsLambda bool

	// Persistence driver: "memory" or "dynamodb"
	PersistenceDriver string

	// Pack retention in the in-memory store
	PackTTLSeconds int

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool

	// Tracing
	EnableTracing   bool
	OTLPEndpoint    string
	TraceSampleRate float64

	// State builder configuration
	StateBuilder StateBuilderConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "cortex")),
		EventBusName:  getEnv("EVENT_BUS_NAME", "cortex-events"),

		IsLambda: getEnvBool("IS_LAMBDA", false),

		PersistenceDriver: getEnv("PERSISTENCE_DRIVER", "memory"),
		PackTTLSeconds:    getEnvInt("PACK_TTL_SECONDS", 3600),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		EnableTracing:   getEnvBool("ENABLE_TRACING", false),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TraceSampleRate: getEnvFloat("TRACE_SAMPLE_RATE", 0.1),

		StateBuilder: StateBuilderConfig{
			MaxNeurons:        getEnvInt("PACK_MAX_NEURONS", 50),
			MinRelevanceScore: getEnvFloat("PACK_MIN_RELEVANCE", 0.3),
			TraversalDepth:    getEnvInt("TRAVERSAL_DEPTH", 2),
			CandidateCap:      getEnvInt("CANDIDATE_CAP", 500),
			WeightsFile:       getEnv("WEIGHTS_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.PersistenceDriver {
	case "memory", "dynamodb":
	default:
		return fmt.Errorf("PERSISTENCE_DRIVER must be memory or dynamodb, got %q", c.PersistenceDriver)
	}

	if c.PersistenceDriver == "dynamodb" && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required when persistence driver is dynamodb")
	}

	if c.StateBuilder.MaxNeurons <= 0 {
		return fmt.Errorf("PACK_MAX_NEURONS must be positive")
	}
	if c.StateBuilder.TraversalDepth < 0 {
		return fmt.Errorf("TRAVERSAL_DEPTH cannot be negative")
	}
	if c.StateBuilder.MinRelevanceScore < 0 || c.StateBuilder.MinRelevanceScore > 1 {
		return fmt.Errorf("PACK_MIN_RELEVANCE must be between 0 and 1")
	}

	if c.Environment == "production" && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required in production")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
