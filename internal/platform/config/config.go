package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string
	HTTPPort      string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KafkaBrokers  []string
	AuthJWTSecret string

	ImageClassifierURL       string
	ImageClassifierAPIKey    string
	ImageClassifierModel     string
	TextClassifierURL        string
	TextClassifierAPIKey     string
	ImageConfidenceThreshold float64
	TextDenyKeywords         []string
	TextClassifierTimeout    time.Duration
	ImageClassifierTimeout   time.Duration

	WarningBanThreshold int
	BanDuration         time.Duration
	BanSweepInterval    time.Duration
	BanSweepConcurrency int
	StaleUploadAfter    time.Duration
	WorkerPollInterval  time.Duration

	EnableAssetConsumer   bool
	EnableBanExpirySweep  bool
	EnableStaleUploadScan bool
}

// Load reads the process environment. A local .env file is applied first when
// present; variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "warden"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))

	brokers := envList("KAFKA_BROKERS")
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	var errs []error
	cfg := Config{
		ServiceName:   service,
		HTTPPort:      port,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0, &errs),
		KafkaBrokers:  brokers,
		AuthJWTSecret: os.Getenv("AUTH_JWT_SECRET"),

		ImageClassifierURL:       strings.TrimSpace(os.Getenv("IMAGE_CLASSIFIER_URL")),
		ImageClassifierAPIKey:    os.Getenv("IMAGE_CLASSIFIER_API_KEY"),
		ImageClassifierModel:     strings.TrimSpace(os.Getenv("IMAGE_CLASSIFIER_MODEL")),
		TextClassifierURL:        strings.TrimSpace(os.Getenv("TEXT_CLASSIFIER_URL")),
		TextClassifierAPIKey:     os.Getenv("TEXT_CLASSIFIER_API_KEY"),
		ImageConfidenceThreshold: envFloat("IMAGE_CONFIDENCE_THRESHOLD", 0.65, &errs),
		TextDenyKeywords:         envList("TEXT_DENY_KEYWORDS"),
		TextClassifierTimeout:    envDuration("TEXT_CLASSIFIER_TIMEOUT", 3*time.Second, &errs),
		ImageClassifierTimeout:   envDuration("IMAGE_CLASSIFIER_TIMEOUT", 10*time.Second, &errs),

		WarningBanThreshold: envInt("WARNING_BAN_THRESHOLD", 3, &errs),
		BanDuration:         time.Duration(envInt("BAN_DURATION_DAYS", 7, &errs)) * 24 * time.Hour,
		BanSweepInterval:    envDuration("BAN_SWEEP_INTERVAL", 24*time.Hour, &errs),
		BanSweepConcurrency: envInt("BAN_SWEEP_CONCURRENCY", 4, &errs),
		StaleUploadAfter:    envDuration("STALE_UPLOAD_AFTER", 15*time.Minute, &errs),
		WorkerPollInterval:  envDuration("WORKER_POLL_INTERVAL", 5*time.Second, &errs),

		EnableAssetConsumer:   envBool("ENABLE_ASSET_CONSUMER", true),
		EnableBanExpirySweep:  envBool("ENABLE_BAN_EXPIRY_SWEEP", true),
		EnableStaleUploadScan: envBool("ENABLE_STALE_UPLOAD_SCAN", true),
	}
	if cfg.ImageConfidenceThreshold <= 0 || cfg.ImageConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("IMAGE_CONFIDENCE_THRESHOLD must be in (0,1], got %v", cfg.ImageConfidenceThreshold))
	}
	if cfg.WarningBanThreshold < 1 {
		errs = append(errs, fmt.Errorf("WARNING_BAN_THRESHOLD must be at least 1, got %d", cfg.WarningBanThreshold))
	}
	if cfg.BanDuration <= 0 {
		errs = append(errs, errors.New("BAN_DURATION_DAYS must be positive"))
	}
	if cfg.WorkerPollInterval <= 0 || cfg.BanSweepInterval <= 0 {
		errs = append(errs, errors.New("WORKER_POLL_INTERVAL and BAN_SWEEP_INTERVAL must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int, errs *[]error) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", name, raw))
		return fallback
	}
	return value
}

func envFloat(name string, fallback float64, errs *[]error) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid number %q", name, raw))
		return fallback
	}
	return value
}

// envDuration accepts Go duration strings ("90s") or plain seconds ("90").
func envDuration(name string, fallback time.Duration, errs *[]error) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			*errs = append(*errs, fmt.Errorf("%s: must be positive", name))
			return fallback
		}
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", name, raw))
		return fallback
	}
	return value
}

func envList(name string) []string {
	var items []string
	for _, value := range strings.Split(os.Getenv(name), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
