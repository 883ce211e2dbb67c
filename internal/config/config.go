package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Place lookup (Nominatim).
	NominatimURL       string
	NominatimUserAgent string
	GeocoderTimeout    time.Duration
	GeocoderRPS        float64

	// Forecast provider (Open-Meteo).
	OpenMeteoURL    string
	ForecastTimeout time.Duration

	// Simulation engine.
	SimulatorURL     string
	SimulatorTimeout time.Duration

	// Response caching.
	CacheEnabled       bool
	CacheSize          int
	GeocodeCacheTTL    time.Duration
	ForecastCacheTTL   time.Duration
	ConditionsCacheTTL time.Duration

	// Batch simulation pipeline.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaJobTopic      string
	KafkaResultTopic   string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		NominatimURL:       sharedcfg.EnvOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "humidity-adviser"),
		OpenMeteoURL:       sharedcfg.EnvOrDefault("OPENMETEO_URL", "https://api.open-meteo.com/v1/forecast"),
		SimulatorURL:       sharedcfg.EnvOrDefault("SIMULATOR_URL", "http://localhost:8000"),
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaJobTopic:      sharedcfg.EnvOrDefault("KAFKA_JOB_TOPIC", "simulation-jobs"),
		KafkaResultTopic:   sharedcfg.EnvOrDefault("KAFKA_RESULT_TOPIC", "simulation-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "humidity-adviser"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"GEOCODER_TIMEOUT", "10s", &cfg.GeocoderTimeout},
		{"FORECAST_TIMEOUT", "10s", &cfg.ForecastTimeout},
		{"SIMULATOR_TIMEOUT", "30s", &cfg.SimulatorTimeout},
		{"GEOCODE_CACHE_TTL", "1h", &cfg.GeocodeCacheTTL},
		{"FORECAST_CACHE_TTL", "30m", &cfg.ForecastCacheTTL},
		{"CONDITIONS_CACHE_TTL", "10m", &cfg.ConditionsCacheTTL},
	}
	for _, d := range durations {
		if *d.dest, err = parsePositiveDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if cfg.GeocoderRPS, err = parsePositiveFloat("GEOCODER_RPS", 1); err != nil {
		return nil, err
	}
	if cfg.CacheSize, err = parsePositiveInt("CACHE_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.CacheEnabled, err = parseBool("CACHE_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}

	if cfg.NominatimUserAgent == "" {
		return nil, errors.New("NOMINATIM_USER_AGENT is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaJobTopic == "" {
			return nil, errors.New("KAFKA_JOB_TOPIC is required")
		}
		if cfg.KafkaResultTopic == "" {
			return nil, errors.New("KAFKA_RESULT_TOPIC is required")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !(f > 0) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}
