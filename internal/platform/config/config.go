// Package config loads application configuration from environment variables.
// All variables use the MAPCROWN_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Cities    CitiesConfig
	Enrich    EnrichConfig
	Facts     FactsConfig
	Quiz      QuizConfig
	Focus     FocusConfig
	Session   SessionConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	Analytics AnalyticsConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins []string // extra WebSocket origins
}

// DataConfig describes where the per-category GeoJSON documents live.
type DataConfig struct {
	Source     string // "file", "http" or "s3"
	Dir        string
	BaseURL    string
	S3         S3Config
	Files      map[string]string // category -> path relative to the source
	SchemaPath string            // optional YAML field table overrides
}

// S3Config holds S3-compatible object storage settings for datasets.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CitiesConfig holds marker sampling and clustering settings.
type CitiesConfig struct {
	SamplingStep            int
	LargeDatasetThreshold   int
	DisableClusteringAtZoom int
	MaxClusterRadius        int
}

// EnrichConfig holds external data service settings.
type EnrichConfig struct {
	RESTCountriesURL string
	WikidataURL      string
	WikipediaURL     string
	Timeout          time.Duration
	UserAgent        string
}

// FactsConfig holds facts extraction settings.
type FactsConfig struct {
	MaxFacts          int
	MinSentenceLength int
	CacheTTL          time.Duration
}

// QuizConfig holds quiz scoring and pool settings.
type QuizConfig struct {
	Points       int
	AdvanceDelay time.Duration
	MinFocusPool int
	TriviaPath   string
}

// FocusConfig describes the regional focus filter.
type FocusConfig struct {
	Name  string
	Terms []string
	Codes []string
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
}

// CacheConfig holds Redis connection settings. Empty URL keeps caches in memory.
type CacheConfig struct {
	URL string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// KafkaConfig holds Kafka producer settings for analytics events.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AnalyticsConfig selects the event sink.
type AnalyticsConfig struct {
	Sink string // "nop", "memory", "postgres" or "kafka"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Categories lists the dataset keys in display order.
var Categories = []string{"countries", "states", "cities", "rivers", "mountains"}

var defaultFiles = map[string]string{
	"countries": "countries.min.json",
	"states":    "states_provinces.min.json",
	"cities":    "cities_major.min.json",
	"rivers":    "rivers.min.json",
	"mountains": "mountains_peaks.min.json",
}

// Load reads configuration from environment variables with MAPCROWN_ prefix.
func Load() (*Config, error) {
	files := make(map[string]string, len(Categories))
	for _, c := range Categories {
		files[c] = envStr("MAPCROWN_DATA_FILE_"+strings.ToUpper(c), defaultFiles[c])
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           envInt("MAPCROWN_SERVER_PORT", 8080),
			Host:           envStr("MAPCROWN_SERVER_HOST", "0.0.0.0"),
			AllowedOrigins: envList("MAPCROWN_SERVER_ALLOWED_ORIGINS", nil),
		},
		Data: DataConfig{
			Source:  envStr("MAPCROWN_DATA_SOURCE", "file"),
			Dir:     envStr("MAPCROWN_DATA_DIR", "./data"),
			BaseURL: envStr("MAPCROWN_DATA_BASE_URL", ""),
			S3: S3Config{
				Endpoint:  envStr("MAPCROWN_DATA_S3_ENDPOINT", ""),
				AccessKey: envStr("MAPCROWN_DATA_S3_ACCESS_KEY", ""),
				SecretKey: envStr("MAPCROWN_DATA_S3_SECRET_KEY", ""),
				Bucket:    envStr("MAPCROWN_DATA_S3_BUCKET", "mapcrown"),
				UseSSL:    envBool("MAPCROWN_DATA_S3_USE_SSL", false),
			},
			Files:      files,
			SchemaPath: envStr("MAPCROWN_DATA_SCHEMA_PATH", ""),
		},
		Cities: CitiesConfig{
			SamplingStep:            envInt("MAPCROWN_CITIES_SAMPLING_STEP", 2),
			LargeDatasetThreshold:   envInt("MAPCROWN_CITIES_LARGE_THRESHOLD", 5000),
			DisableClusteringAtZoom: envInt("MAPCROWN_CITIES_DISABLE_CLUSTERING_AT_ZOOM", 8),
			MaxClusterRadius:        envInt("MAPCROWN_CITIES_MAX_CLUSTER_RADIUS", 50),
		},
		Enrich: EnrichConfig{
			RESTCountriesURL: envStr("MAPCROWN_ENRICH_RESTCOUNTRIES_URL", "https://restcountries.com/v3.1"),
			WikidataURL:      envStr("MAPCROWN_ENRICH_WIKIDATA_URL", "https://query.wikidata.org/sparql"),
			WikipediaURL:     envStr("MAPCROWN_ENRICH_WIKIPEDIA_URL", "https://en.wikipedia.org/api/rest_v1"),
			Timeout:          envDuration("MAPCROWN_ENRICH_TIMEOUT", 6*time.Second),
			UserAgent:        envStr("MAPCROWN_ENRICH_USER_AGENT", "MapCrown/1.0 (geography learning)"),
		},
		Facts: FactsConfig{
			MaxFacts:          envInt("MAPCROWN_FACTS_MAX", 8),
			MinSentenceLength: envInt("MAPCROWN_FACTS_MIN_SENTENCE", 35),
			CacheTTL:          envDuration("MAPCROWN_FACTS_CACHE_TTL", 12*time.Hour),
		},
		Quiz: QuizConfig{
			Points:       envInt("MAPCROWN_QUIZ_POINTS", 10),
			AdvanceDelay: envDuration("MAPCROWN_QUIZ_ADVANCE_DELAY", 1200*time.Millisecond),
			MinFocusPool: envInt("MAPCROWN_QUIZ_MIN_FOCUS_POOL", 4),
			TriviaPath:   envStr("MAPCROWN_QUIZ_TRIVIA_PATH", ""),
		},
		Focus: FocusConfig{
			Name:  envStr("MAPCROWN_FOCUS_NAME", "India"),
			Terms: envList("MAPCROWN_FOCUS_TERMS", []string{"india"}),
			Codes: envList("MAPCROWN_FOCUS_CODES", []string{"in", "ind"}),
		},
		Session: SessionConfig{
			CookieName: envStr("MAPCROWN_SESSION_COOKIE", "mapcrown_session"),
			TTL:        envDuration("MAPCROWN_SESSION_TTL", 12*time.Hour),
		},
		Cache: CacheConfig{
			URL: envStr("MAPCROWN_CACHE_URL", ""),
		},
		Database: DatabaseConfig{
			URL:      envStr("MAPCROWN_DATABASE_URL", ""),
			MaxConns: envInt("MAPCROWN_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("MAPCROWN_DATABASE_MIN_CONNS", 1),
		},
		Kafka: KafkaConfig{
			Brokers: envList("MAPCROWN_KAFKA_BROKERS", nil),
			Topic:   envStr("MAPCROWN_KAFKA_TOPIC", "mapcrown.events"),
		},
		Analytics: AnalyticsConfig{
			Sink: envStr("MAPCROWN_ANALYTICS_SINK", "nop"),
		},
		Log: LogConfig{
			Level:  envStr("MAPCROWN_LOG_LEVEL", "info"),
			Format: envStr("MAPCROWN_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks enumerations and the settings required by the selected backends.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case "file":
		if c.Data.Dir == "" {
			return fmt.Errorf("MAPCROWN_DATA_DIR is required for the file data source")
		}
	case "http":
		if c.Data.BaseURL == "" {
			return fmt.Errorf("MAPCROWN_DATA_BASE_URL is required for the http data source")
		}
	case "s3":
		if c.Data.S3.Endpoint == "" || c.Data.S3.AccessKey == "" || c.Data.S3.SecretKey == "" {
			return fmt.Errorf("MAPCROWN_DATA_S3_ENDPOINT, MAPCROWN_DATA_S3_ACCESS_KEY and MAPCROWN_DATA_S3_SECRET_KEY are required for the s3 data source")
		}
	default:
		return fmt.Errorf("MAPCROWN_DATA_SOURCE must be 'file', 'http' or 's3', got %q", c.Data.Source)
	}

	switch c.Analytics.Sink {
	case "nop", "memory":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("MAPCROWN_DATABASE_URL is required for the postgres analytics sink")
		}
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("MAPCROWN_KAFKA_BROKERS is required for the kafka analytics sink")
		}
	default:
		return fmt.Errorf("MAPCROWN_ANALYTICS_SINK must be 'nop', 'memory', 'postgres' or 'kafka', got %q", c.Analytics.Sink)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("MAPCROWN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.Quiz.Points <= 0 {
		return fmt.Errorf("MAPCROWN_QUIZ_POINTS must be positive, got %d", c.Quiz.Points)
	}

	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping empty items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
