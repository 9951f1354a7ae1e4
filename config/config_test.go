package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetTicketConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := GetTicketConfig()

		assert.Equal(t, "/assets/ticket-fallback.png", cfg.FallbackImageURL)
		assert.Equal(t, time.UTC, cfg.Location)
		assert.Equal(t, 390.0, cfg.DefaultViewportWidth)
		assert.Equal(t, 30*time.Minute, cfg.PreviewIdleTTL)
	})

	t.Run("FromEnv", func(t *testing.T) {
		t.Setenv("FALLBACK_IMAGE_URL", "https://cdn.example.com/fallback.png")
		t.Setenv("DEFAULT_VIEWPORT_WIDTH", "428")
		t.Setenv("PREVIEW_IDLE_TTL", "5m")

		cfg := GetTicketConfig()

		assert.Equal(t, "https://cdn.example.com/fallback.png", cfg.FallbackImageURL)
		assert.Equal(t, 428.0, cfg.DefaultViewportWidth)
		assert.Equal(t, 5*time.Minute, cfg.PreviewIdleTTL)
	})
}

func TestGetServerConfig_AllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg := GetServerConfig()

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestGetNavigationConfig_Defaults(t *testing.T) {
	cfg := GetNavigationConfig()

	assert.Equal(t, "redis", cfg.Driver)
	assert.Equal(t, "navigation:stream", cfg.StreamKey)
	assert.Equal(t, 64, cfg.BufferSize)
}
