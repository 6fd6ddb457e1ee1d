package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "PUBLIC_URL", "ALLOWED_ORIGINS", "COOKIE_SECURE", "JWT_EXPIRY",
		"REDIS_DB", "SESSION_CLEANUP_INTERVAL", "AUTO_MIGRATE", "JWT_SECRET",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":3000", cfg.Address)
	assert.Equal(t, "http://localhost:3000", cfg.PublicURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, time.Hour, cfg.SessionCleanupInterval)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("PUBLIC_URL", "https://app.example.com/")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSION_CLEANUP_INTERVAL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "https://app.example.com", cfg.PublicURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com", "https://app.example.com"}, cfg.AllowedOrigins)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.SessionCleanupInterval)
	assert.Equal(t, "https://app.example.com/api/auth/callback/github", cfg.OAuthRedirectURL("github"))
}

func TestPublicURLOriginIsNotDuplicated(t *testing.T) {
	t.Setenv("PUBLIC_URL", "https://app.example.com/base")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")

	cfg := Load()

	assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
}
