package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Sink kinds accepted by SINK_KIND.
const (
	SinkSheet    = "sheet"
	SinkS3       = "s3"
	SinkPostgres = "postgres"
)

// DatabaseConfig holds PostgreSQL connection settings for the postgres sink.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the s3 sink.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LogConfig controls the process-wide structured logger.
type LogConfig struct {
	Level    string
	Format   string
	Timezone string
}

// ClassifierConfig configures the multimodal completion service used to summarize prescriptions.
type ClassifierConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string
	Timeout  time.Duration
}

// SheetConfig configures the spreadsheet-backed web app endpoint.
type SheetConfig struct {
	URL          string
	StrictStatus bool
	Timeout      time.Duration
}

// SinkConfig selects where assembled payloads are delivered.
type SinkConfig struct {
	Kind  string
	Sheet SheetConfig
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string
	Port       string
	Log        LogConfig
	Classifier ClassifierConfig
	Sink       SinkConfig
	Database   DatabaseConfig
	MinIO      MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", "json"),
			Timezone: getEnv("LOG_TIMEZONE", "UTC"),
		},
		Classifier: ClassifierConfig{
			BaseURL: getEnv("CLASSIFIER_BASE_URL", "https://generativelanguage.googleapis.com"),
			// API_KEY is accepted for older deployments.
			APIKey:   getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
			Model:    getEnv("CLASSIFIER_MODEL", "gemini-3-flash-preview"),
			Language: getEnv("CLASSIFIER_LANGUAGE", "Arabic"),
			Timeout:  getEnvDuration("CLASSIFIER_TIMEOUT", 60*time.Second),
		},
		Sink: SinkConfig{
			Kind: strings.ToLower(getEnv("SINK_KIND", SinkSheet)),
			Sheet: SheetConfig{
				URL:          getEnv("SHEET_ENDPOINT_URL", ""),
				StrictStatus: getEnvBool("SHEET_STRICT_STATUS", true),
				Timeout:      getEnvDuration("SHEET_TIMEOUT", 60*time.Second),
			},
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

// Location resolves the configured log time zone, falling back to UTC.
func (c LogConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
