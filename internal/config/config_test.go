package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("DB_URL")
	os.Unsetenv("PROXY_LIST")

	cfg := Load()
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, 5000, cfg.SMTPTimeoutMs)
	assert.True(t, cfg.EnableSMTP)
	assert.Nil(t, cfg.ProxyList)
}

func TestLoad_ReadsOverrides(t *testing.T) {
	os.Setenv("REDIS_ADDR", "redis.internal:6380")
	os.Setenv("PROXY_LIST", "proxy1:1080,proxy2:1080")
	os.Setenv("SMTP_PROXY_ENABLED", "true")
	defer os.Unsetenv("REDIS_ADDR")
	defer os.Unsetenv("PROXY_LIST")
	defer os.Unsetenv("SMTP_PROXY_ENABLED")

	cfg := Load()
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
	assert.Equal(t, []string{"proxy1:1080", "proxy2:1080"}, cfg.ProxyList)
	assert.True(t, cfg.SMTPProxyEnabled)
}

func TestGetIntOrDefault_InvalidFallsBack(t *testing.T) {
	os.Setenv("SMTP_TIMEOUT_MS", "not-a-number")
	defer os.Unsetenv("SMTP_TIMEOUT_MS")

	cfg := Load()
	assert.Equal(t, 5000, cfg.SMTPTimeoutMs)
}
