package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:                 3004,
		DatabaseHost:         "localhost",
		DatabaseName:         "fern",
		DatabaseMaxOpenConns: 25,
		DatabaseMaxIdleConns: 10,
		SearchTextConfig:     "english",
		SearchMinLexical:     0.1,
		SearchMinFuzzy:       0.2,
		TraceExporter:        "none",
	}
}

// unsetEnv clears keys for the test so envconfig falls back to the defaults.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if old, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, old) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "PORT", "DB_HOST", "DB_NAME", "DB_CONN_MAX_LIFETIME", "TRACE_EXPORTER", "KAFKA_ENABLED", "KAFKA_BROKERS",
		"SEARCH_TEXT_CONFIG", "SEARCH_MIN_LEXICAL", "SEARCH_MIN_FUZZY", "CLOSED_ATTRIBUTE_VALUES", "IMPORT_MAX_UPLOAD_BYTES")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3004, cfg.Port)
	assert.Equal(t, "english", cfg.SearchTextConfig)
	assert.Equal(t, 0.1, cfg.SearchMinLexical)
	assert.Equal(t, 0.2, cfg.SearchMinFuzzy)
	assert.False(t, cfg.ClosedAttributeValues)
	assert.Equal(t, int64(10485760), cfg.ImportMaxUploadBytes)
	assert.Equal(t, 5*time.Minute, cfg.DatabaseConnMaxLifetime)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "none", cfg.TraceExporter)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FERN_TEST_ONLY_KEY=1\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("FERN_TEST_ONLY_KEY") })
	t.Setenv("SEARCH_MIN_FUZZY", "0.35")
	t.Setenv("CLOSED_ATTRIBUTE_VALUES", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1", os.Getenv("FERN_TEST_ONLY_KEY"))
	assert.Equal(t, 0.35, cfg.SearchMinFuzzy)
	assert.True(t, cfg.ClosedAttributeValues)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TRACE_EXPORTER", "jaeger")
	_, err := Load("")
	assert.ErrorContains(t, err, "TRACE_EXPORTER")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port", func(c *Config) { c.Port = 0 }, "PORT"},
		{"db host", func(c *Config) { c.DatabaseHost = " " }, "DB_HOST"},
		{"idle above open", func(c *Config) { c.DatabaseMaxIdleConns = 30 }, "DB_MAX_IDLE_CONNS"},
		{"lexical", func(c *Config) { c.SearchMinLexical = 1.5 }, "SEARCH_MIN_LEXICAL"},
		{"fuzzy", func(c *Config) { c.SearchMinFuzzy = -0.1 }, "SEARCH_MIN_FUZZY"},
		{"kafka brokers", func(c *Config) { c.KafkaEnabled = true }, "KAFKA_BROKERS"},
		{"otlp protocol", func(c *Config) { c.TraceExporter = "otlp"; c.OTLPProtocol = "udp" }, "OTLP_PROTOCOL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	cfg.DatabasePort = "5432"
	cfg.DatabaseSSLMode = "disable"
	assert.Equal(t, "host=localhost port=5432 dbname=fern sslmode=disable", cfg.DatabaseDSN())

	cfg.DatabaseUserName = "fern"
	cfg.DatabasePassword = "secret"
	assert.Equal(t, "host=localhost port=5432 dbname=fern sslmode=disable user=fern password=secret", cfg.DatabaseDSN())
}
