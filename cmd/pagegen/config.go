package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type config struct {
	listenAddr string

	logLevel  string
	logFormat string

	backend          string
	generatorTimeout time.Duration

	awsRegion      string
	bedrockModelID string

	messagesURL       string
	messagesAPIKey    string
	messagesModel     string
	messagesMaxTokens int
	retryMax          int

	regenMinInterval   time.Duration
	staleAfterFailures int
	markStale          bool

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string

	shutdownTimeout time.Duration
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", "0.0.0.0:3000")

	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.logFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "json"))

	cfg.backend = strings.ToLower(getenvDefault("GENERATOR_BACKEND", "bedrock"))
	cfg.generatorTimeout = getenvDurationDefault("GENERATOR_TIMEOUT", 0)

	cfg.awsRegion = getenvDefault("AWS_REGION", "us-east-1")
	cfg.bedrockModelID = getenvDefault("BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20240620-v1:0")

	cfg.messagesURL = getenvDefault("MESSAGES_API_URL", "https://api.anthropic.com/v1/messages")
	cfg.messagesAPIKey = os.Getenv("MESSAGES_API_KEY")
	cfg.messagesModel = getenvDefault("MESSAGES_MODEL", "claude-3-5-sonnet-20240620")
	cfg.messagesMaxTokens = getenvIntDefault("MESSAGES_MAX_TOKENS", 8192)
	cfg.retryMax = getenvIntDefault("GENERATOR_RETRY_MAX", 2)

	// 0 desliga o pacer: toda request que achar o guard livre dispara uma regeneração.
	cfg.regenMinInterval = getenvDurationDefault("REGEN_MIN_INTERVAL", 0)
	cfg.staleAfterFailures = getenvIntDefault("STALE_AFTER_FAILURES", 3)
	cfg.markStale = getenvBoolDefault("MARK_STALE_HEADER", true)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "pagegen:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("STATS_BUCKET", "minute")

	cfg.shutdownTimeout = getenvDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second)

	switch cfg.backend {
	case "bedrock", "messages", "fixture":
	default:
		return config{}, errors.New("GENERATOR_BACKEND must be one of bedrock, messages, fixture")
	}
	if cfg.backend == "messages" && strings.TrimSpace(cfg.messagesAPIKey) == "" {
		return config{}, errors.New("MESSAGES_API_KEY is required when GENERATOR_BACKEND=messages")
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	if cfg.messagesMaxTokens <= 0 {
		return config{}, errors.New("MESSAGES_MAX_TOKENS must be > 0")
	}
	if cfg.retryMax < 0 {
		return config{}, errors.New("GENERATOR_RETRY_MAX must be >= 0")
	}
	if cfg.regenMinInterval < 0 {
		return config{}, errors.New("REGEN_MIN_INTERVAL must be >= 0")
	}
	if cfg.staleAfterFailures < 0 {
		return config{}, errors.New("STALE_AFTER_FAILURES must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
