package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                 string
	HTTPAddr            string
	MongoURI            string
	MongoDB             string
	KafkaBrokers        []string
	KafkaTopicPrefix    string
	IdempotencyTTL      time.Duration
	OutboxPollInterval  time.Duration
	RetryBackoff        []time.Duration
	StorageMode         string
	VATPercent          float64
	GuestFeePercent     float64
	HostFeePercent      float64
	BreakdownByteBudget int
	ExportEndpoint      string
	ExportTimeout       time.Duration
	PaymentsWebhookPath string
	PaymentsTopic       string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                 getEnv("APP_ENV", "dev"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDB:             getEnv("MONGO_DB", "holidayrentals"),
		KafkaTopicPrefix:    getEnv("KAFKA_TOPIC_PREFIX", ""),
		StorageMode:         strings.ToLower(getEnv("STORAGE_MODE", "mongo")),
		ExportEndpoint:      getEnv("EXPORT_ENDPOINT", ""),
		PaymentsWebhookPath: getEnv("PAYMENTS_WEBHOOK_PATH", "/webhooks/payments"),
		PaymentsTopic:       getEnv("PAYMENTS_EVENTS_TOPIC", ""),
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	idempotencyTTL, err := parseDurationEnv("IDEMP_TTL", 168*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL = idempotencyTTL

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	exportTimeout, err := parseDurationEnv("EXPORT_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ExportTimeout = exportTimeout

	vat, err := parseFloatEnv("VAT_PERCENT", 21)
	if err != nil {
		return Config{}, err
	}
	cfg.VATPercent = vat

	guestFee, err := parseFloatEnv("GUEST_FEE_PERCENT", 12)
	if err != nil {
		return Config{}, err
	}
	cfg.GuestFeePercent = guestFee

	hostFee, err := parseFloatEnv("HOST_FEE_PERCENT", 3)
	if err != nil {
		return Config{}, err
	}
	cfg.HostFeePercent = hostFee

	budget, err := parseIntEnv("BREAKDOWN_BYTE_BUDGET", 5000)
	if err != nil {
		return Config{}, err
	}
	cfg.BreakdownByteBudget = budget

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	if cfg.StorageMode != "memory" && cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.VATPercent < 0 || cfg.VATPercent > 100 {
		return Config{}, fmt.Errorf("VAT_PERCENT must be in [0, 100]")
	}
	if cfg.GuestFeePercent < 0 || cfg.GuestFeePercent > 100 {
		return Config{}, fmt.Errorf("GUEST_FEE_PERCENT must be in [0, 100]")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return f, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}
