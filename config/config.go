package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppName                       string   `envconfig:"APP_NAME" default:"fern-api"`
	Version                       string   `envconfig:"APP_VERSION" default:"dev"`
	Port                          int      `envconfig:"PORT" default:"3004"`
	LogLevel                      string   `envconfig:"LOG_LEVEL" default:"info"`
	PrettyLogs                    bool     `envconfig:"PRETTY_LOGS" default:"false"`
	HttpServerWriteTimeoutSeconds int      `envconfig:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" default:"30"`
	HttpServerReadTimeoutSeconds  int      `envconfig:"HTTP_SERVER_READ_TIMEOUT_SECONDS" default:"30"`
	HttpServerIdleTimeoutSeconds  int      `envconfig:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" default:"60"`
	ShutdownTimeoutSeconds        int      `envconfig:"HTTP_SERVER_SHUTDOWN_TIMEOUT_SECONDS" default:"10"`
	AllowOrigins                  []string `envconfig:"HTTP_SERVER_ALLOW_ORIGINS" default:"*"`
	AllowMethods                  []string `envconfig:"HTTP_SERVER_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE"`
	StartupMaxAttempts            int      `envconfig:"STARTUP_MAX_ATTEMPTS" default:"5"`

	// PostgreSQL
	DatabaseHost                  string        `envconfig:"DB_HOST" default:"localhost"`
	DatabasePort                  string        `envconfig:"DB_PORT" default:"5432"`
	DatabaseUserName              string        `envconfig:"DB_USER_NAME" default:""`
	DatabasePassword              string        `envconfig:"DB_PASSWORD" default:""`
	DatabaseName                  string        `envconfig:"DB_NAME" default:"fern"`
	DatabaseSSLMode               string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DatabaseMaxOpenConns          int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DatabaseMaxIdleConns          int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DatabaseConnMaxLifetime       time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	DatabaseMigrationFolderPath   string        `envconfig:"DB_MIGRATION_FOLDER_PATH" default:"db/pg"`
	DatabaseMigrationVersion      uint          `envconfig:"DB_MIGRATION_VERSION" default:"0"`
	DatabaseMigrationForce        int           `envconfig:"DB_MIGRATION_FORCE" default:"0"`
	DatabaseMigrationAutoRollback bool          `envconfig:"DB_MIGRATION_AUTO_ROLLBACK" default:"true"`

	// Search
	SearchTextConfig string  `envconfig:"SEARCH_TEXT_CONFIG" default:"english"`
	SearchMinLexical float64 `envconfig:"SEARCH_MIN_LEXICAL" default:"0.1"`
	SearchMinFuzzy   float64 `envconfig:"SEARCH_MIN_FUZZY" default:"0.2"`

	// ClosedAttributeValues makes allowed-value lists binding for every group,
	// not only the groups flagged closed.
	ClosedAttributeValues bool `envconfig:"CLOSED_ATTRIBUTE_VALUES" default:"false"`

	ImportMaxUploadBytes int64 `envconfig:"IMPORT_MAX_UPLOAD_BYTES" default:"10485760"`

	// Kafka Producer
	KafkaEnabled      bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers      []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic        string   `envconfig:"KAFKA_TOPIC" default:"fern.catalog.events"`
	KafkaBatchSize    int      `envconfig:"KAFKA_BATCH_SIZE" default:"100"`
	KafkaBatchTimeout int      `envconfig:"KAFKA_BATCH_TIMEOUT_MS" default:"100"`
	KafkaRequiredAcks int      `envconfig:"KAFKA_REQUIRED_ACKS" default:"1"`
	KafkaCompression  string   `envconfig:"KAFKA_COMPRESSION" default:"snappy"`

	// Tracing
	TraceExporter  string `envconfig:"TRACE_EXPORTER" default:"none"`
	OTLPEndpoint   string `envconfig:"OTLP_ENDPOINT" default:"localhost:4317"`
	OTLPProtocol   string `envconfig:"OTLP_PROTOCOL" default:"grpc"`
	OTLPInsecure   bool   `envconfig:"OTLP_INSECURE" default:"true"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads an optional .env file and then the environment. Variables already
// set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if strings.TrimSpace(c.DatabaseHost) == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.DatabaseMaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}
	if c.DatabaseMaxIdleConns > c.DatabaseMaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) cannot exceed DB_MAX_OPEN_CONNS (%d)", c.DatabaseMaxIdleConns, c.DatabaseMaxOpenConns)
	}
	if c.SearchMinLexical < 0 || c.SearchMinLexical > 1 {
		return fmt.Errorf("SEARCH_MIN_LEXICAL must be between 0 and 1")
	}
	if c.SearchMinFuzzy < 0 || c.SearchMinFuzzy > 1 {
		return fmt.Errorf("SEARCH_MIN_FUZZY must be between 0 and 1")
	}
	if strings.TrimSpace(c.SearchTextConfig) == "" {
		return fmt.Errorf("SEARCH_TEXT_CONFIG is required")
	}
	if c.ImportMaxUploadBytes < 0 {
		return fmt.Errorf("IMPORT_MAX_UPLOAD_BYTES must be >= 0")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	switch c.TraceExporter {
	case "none", "console", "otlp":
	default:
		return fmt.Errorf("TRACE_EXPORTER must be none, console or otlp, got %q", c.TraceExporter)
	}
	if c.TraceExporter == "otlp" && c.OTLPProtocol != "grpc" && c.OTLPProtocol != "http" {
		return fmt.Errorf("OTLP_PROTOCOL must be grpc or http, got %q", c.OTLPProtocol)
	}
	return nil
}

// DatabaseDSN is the lib/pq connection string.
func (c *Config) DatabaseDSN() string {
	parts := []string{
		"host=" + c.DatabaseHost,
		"port=" + c.DatabasePort,
		"dbname=" + c.DatabaseName,
		"sslmode=" + c.DatabaseSSLMode,
	}
	if c.DatabaseUserName != "" {
		parts = append(parts, "user="+c.DatabaseUserName)
	}
	if c.DatabasePassword != "" {
		parts = append(parts, "password="+c.DatabasePassword)
	}
	return strings.Join(parts, " ")
}
