package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.SessionLockTimeout)
	assert.Equal(t, []string{"GET", "POST", "PUT", "DELETE"}, cfg.AllowMethods)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("HTTP_SERVER_ALLOW_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, SessionStoreRedis, cfg.SessionStore)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "cache", cfg.RedisHost)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowOrigins)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		rule  string
	}{
		{name: "unknown store", key: "SESSION_STORE", value: "disk", rule: "field 'SessionStore' failed rule 'oneof=memory redis'"},
		{name: "zero lock timeout", key: "SESSION_LOCK_TIMEOUT", value: "0s", rule: "field 'SessionLockTimeout' failed rule 'gt=0'"},
		{name: "negative ttl", key: "SESSION_TTL", value: "-1m", rule: "field 'SessionTTL' failed rule 'gte=0'"},
		{name: "unknown otlp protocol", key: "OTLP_PROTOCOL", value: "udp", rule: "field 'OTLPProtocol' failed rule 'oneof=grpc http'"},
		{name: "port out of range", key: "PORT", value: "70000", rule: "field 'Port' failed rule 'lte=65535'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
			assert.Contains(t, err.Error(), tt.rule)
		})
	}
}

func TestLoadAllowsZeroTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.SessionTTL)
}
