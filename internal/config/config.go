package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Port            string
	ValidAPIKeys    []string
	SkipAPIKeyCheck bool
}

type InfluxDBConfig struct {
	URL          string
	Token        string
	Org          string
	SensorBucket string
	BMKGBucket   string
}

type SensorPollerConfig struct {
	DeviceCSVPath  string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

type BMKGConfig struct {
	BaseURL      string
	KodeWilayah  string
	FetchTimeout time.Duration
	CronSpec     string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type HealthConfig struct {
	PingTimeout time.Duration
	CacheTTL    time.Duration
}

type Config struct {
	Server       ServerConfig
	InfluxDB     InfluxDBConfig
	SensorPoller SensorPollerConfig
	BMKG         BMKGConfig
	Gemini       GeminiConfig
	Redis        RedisConfig
	Health       HealthConfig
}

func New() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("API_PORT", "8002"),
			ValidAPIKeys:    splitNonEmpty(getEnvOrDefault("VALID_API_KEYS", "")),
			SkipAPIKeyCheck: getEnvBool("SKIP_API_KEY_CHECK_FOR_DEV", false),
		},
		InfluxDB: InfluxDBConfig{
			URL:          getEnvOrDefault("INFLUXDB_URL", "http://localhost:8086"),
			Token:        getEnvOrDefault("INFLUXDB_TOKEN", ""),
			Org:          getEnvOrDefault("INFLUXDB_ORG", "archive_org"),
			SensorBucket: getEnvOrDefault("INFLUXDB_BUCKET", "sensor_data_primary"),
			BMKGBucket:   getEnvOrDefault("INFLUXDB_BMKG_BUCKET", "bmkg_weather"),
		},
		SensorPoller: SensorPollerConfig{
			DeviceCSVPath:  getEnvOrDefault("DEVICE_CSV_PATH", "config/devices.csv"),
			PollInterval:   getEnvDuration("SENSOR_POLL_INTERVAL", 10*time.Second),
			RequestTimeout: getEnvDuration("SENSOR_REQUEST_TIMEOUT", 5*time.Second),
		},
		BMKG: BMKGConfig{
			BaseURL:      getEnvOrDefault("BMKG_API_URL", "https://api.bmkg.go.id/publik/prakiraan-cuaca"),
			KodeWilayah:  getEnvOrDefault("BMKG_KODE_WILAYAH", "31.74.04.1003"),
			FetchTimeout: getEnvDuration("BMKG_FETCH_TIMEOUT", 30*time.Second),
			CronSpec:     getEnvOrDefault("BMKG_CRON_SPEC", "@every 3h"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnvOrDefault("GEMINI_API_KEY", ""),
			Model:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", ""),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Health: HealthConfig{
			PingTimeout: getEnvDuration("HEALTH_PING_TIMEOUT", 2*time.Second),
			CacheTTL:    getEnvDuration("HEALTH_CACHE_TTL", 10*time.Minute),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
