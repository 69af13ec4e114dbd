package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds connector configuration loaded from the environment.
type Config struct {
	AppName             string
	LogLevel            string
	HTTPPort            string
	RabbitURL           string
	WebhookQueue        string
	OutboundQueue       string
	DeadLetterQueue     string
	PrefetchCount       int
	WorkerCount         int
	GraphURL            string
	WhatsAppToken       string
	BaseFileURL         string
	ChatAPIURL          string
	ChatToken           string
	ProjectID           string
	DatabaseURL         string
	RedisURL            string
	KVTable             string
	BotTestTTL          time.Duration
	ProviderTimeout     time.Duration
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
}

// Load loads configuration and performs basic validation.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppName:             getEnv("APP_NAME", "whatsapp_connector"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		RabbitURL:           getEnv("RABBITMQ_URL", ""),
		WebhookQueue:        getEnv("WEBHOOK_QUEUE", "whatsapp.webhook.queue"),
		OutboundQueue:       getEnv("OUTBOUND_QUEUE", "whatsapp.outbound.queue"),
		DeadLetterQueue:     getEnv("WEBHOOK_DLQ", "whatsapp.failed.queue"),
		PrefetchCount:       getEnvAsInt("WEBHOOK_PREFETCH", 100),
		WorkerCount:         getEnvAsInt("WORKER_COUNT", 5),
		GraphURL:            getEnv("GRAPH_URL", "https://graph.facebook.com/v17.0/"),
		WhatsAppToken:       getEnv("WHATSAPP_TOKEN", ""),
		BaseFileURL:         getEnv("BASE_FILE_URL", ""),
		ChatAPIURL:          getEnv("CHAT_API_URL", ""),
		ChatToken:           getEnv("CHAT_TOKEN", ""),
		ProjectID:           getEnv("PROJECT_ID", ""),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		KVTable:             getEnv("KV_TABLE", "kvstore"),
		BotTestTTL:          getEnvAsDuration("BOT_TEST_TTL", time.Hour),
		ProviderTimeout:     getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
		RetryMaxAttempts:    getEnvAsInt("RETRY_MAX_ATTEMPTS", 4),
		RetryInitialBackoff: getEnvAsDuration("RETRY_INITIAL_BACKOFF", time.Second),
		RetryMaxBackoff:     getEnvAsDuration("RETRY_MAX_BACKOFF", 15*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.RabbitURL == "" {
		missing = append(missing, "RABBITMQ_URL")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if c.WhatsAppToken == "" {
		missing = append(missing, "WHATSAPP_TOKEN")
	}
	if c.ChatAPIURL == "" {
		missing = append(missing, "CHAT_API_URL")
	}
	if c.ProjectID == "" {
		missing = append(missing, "PROJECT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

func getEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func getEnvAsInt(key string, def int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid int for %s, using default %d: %v", key, def, err)
			return def
		}
		return i
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("invalid duration for %s, using default %s: %v", key, def, err)
			return def
		}
		return d
	}
	return def
}
