package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment after an
// optional .env file.
type Config struct {
	Port               string
	DatabaseURL        string
	FeedURL            string
	RenderSink         string
	RedisAddr          string
	RedisChannel       string
	MQTTBroker         string
	MQTTTopic          string
	ORSAPIKey          string
	RosterPath         string
	SeedPath           string
	Location           *time.Location
	Debounce           time.Duration
	ReevaluateInterval time.Duration
	LogLevel           string
	LogPretty          bool
}

// Load reads .env (if present) and the environment. The returned bool reports
// whether a .env file was found.
func Load() (*Config, bool, error) {
	envFound := godotenv.Load() == nil

	loc, err := time.LoadLocation(Get("TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		return nil, envFound, fmt.Errorf("load config: TIMEZONE: %w", err)
	}

	debounce, err := GetDuration("DEBOUNCE", 100*time.Millisecond)
	if err != nil {
		return nil, envFound, fmt.Errorf("load config: %w", err)
	}

	reevaluate, err := GetDuration("REEVALUATE_INTERVAL", time.Minute)
	if err != nil {
		return nil, envFound, fmt.Errorf("load config: %w", err)
	}

	pretty, err := GetBool("LOG_PRETTY", false)
	if err != nil {
		return nil, envFound, fmt.Errorf("load config: %w", err)
	}

	cfg := &Config{
		Port:               Get("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FeedURL:            os.Getenv("FEED_URL"),
		RenderSink:         strings.ToLower(Get("RENDER_SINK", "log")),
		RedisAddr:          Get("REDIS_ADDR", "localhost:6379"),
		RedisChannel:       Get("REDIS_CHANNEL", "dashboard:routes"),
		MQTTBroker:         Get("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTTopic:          Get("MQTT_TOPIC", "dashboard/routes"),
		ORSAPIKey:          os.Getenv("ORS_API_KEY"),
		RosterPath:         os.Getenv("ROSTER_PATH"),
		SeedPath:           Get("SEED_PATH", "data/seeds/snapshot.json"),
		Location:           loc,
		Debounce:           debounce,
		ReevaluateInterval: reevaluate,
		LogLevel:           Get("LOG_LEVEL", "info"),
		LogPretty:          pretty,
	}

	switch cfg.RenderSink {
	case "log", "redis", "mqtt":
	default:
		return nil, envFound, fmt.Errorf("load config: RENDER_SINK must be one of log, redis, mqtt (got %q)", cfg.RenderSink)
	}

	if cfg.DatabaseURL == "" && cfg.FeedURL == "" {
		return nil, envFound, fmt.Errorf("load config: one of DATABASE_URL or FEED_URL is required")
	}

	return cfg, envFound, nil
}

// Get returns the trimmed value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: parse duration %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must not be negative", key)
	}
	return d, nil
}

func GetBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: parse bool %q: %w", key, v, err)
	}
	return b, nil
}
