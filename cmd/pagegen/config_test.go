package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv zera as variáveis lidas por readConfig (string vazia = não definida).
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LISTEN_ADDR", "LOG_LEVEL", "LOG_FORMAT", "GENERATOR_BACKEND", "GENERATOR_TIMEOUT",
		"AWS_REGION", "BEDROCK_MODEL_ID", "MESSAGES_API_URL", "MESSAGES_API_KEY", "MESSAGES_MODEL",
		"MESSAGES_MAX_TOKENS", "GENERATOR_RETRY_MAX", "REGEN_MIN_INTERVAL", "STALE_AFTER_FAILURES",
		"MARK_STALE_HEADER", "STATS_ENABLED", "STATS_REDIS_ADDR", "STATS_REDIS_PASSWORD",
		"STATS_REDIS_DB", "STATS_PREFIX", "STATS_TTL", "STATS_BUCKET", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestReadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := readConfig()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:3000", cfg.listenAddr)
	require.Equal(t, "bedrock", cfg.backend)
	require.Equal(t, "us-east-1", cfg.awsRegion)
	require.Equal(t, time.Duration(0), cfg.regenMinInterval)
	require.Equal(t, 3, cfg.staleAfterFailures)
	require.False(t, cfg.statsEnabled)
}

func TestReadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("GENERATOR_BACKEND", "Messages")
	t.Setenv("MESSAGES_API_KEY", "k")
	t.Setenv("REGEN_MIN_INTERVAL", "30s")
	t.Setenv("GENERATOR_RETRY_MAX", "5")
	t.Setenv("STALE_AFTER_FAILURES", "not-a-number")

	cfg, err := readConfig()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.listenAddr)
	require.Equal(t, "messages", cfg.backend)
	require.Equal(t, 30*time.Second, cfg.regenMinInterval)
	require.Equal(t, 5, cfg.retryMax)
	require.Equal(t, 3, cfg.staleAfterFailures, "invalid value falls back to default")
}

func TestReadConfig_Validation(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":       {"GENERATOR_BACKEND": "openai"},
		"messages without key":  {"GENERATOR_BACKEND": "messages"},
		"stats without redis":   {"STATS_ENABLED": "true"},
		"negative retry":        {"GENERATOR_RETRY_MAX": "-1"},
		"negative regen pacing": {"REGEN_MIN_INTERVAL": "-1s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := readConfig()
			require.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug", "console")
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = newLogger("loud", "json")
	require.Error(t, err)
}
