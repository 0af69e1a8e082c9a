package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithSecretFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "6001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 6001, cfg.Server.Port)
	assert.Equal(t, 25*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, 10*time.Second, cfg.WebSocket.HandshakeTimeout)
	assert.Equal(t, 4096, cfg.Messaging.MaxContentLength)
	assert.True(t, cfg.Presence.Broadcast)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_PingMustBeShorterThanPong(t *testing.T) {
	cfg := &Config{
		Auth:      AuthConfig{JWTSecret: "x"},
		WebSocket: WebSocketConfig{PingInterval: time.Minute, PongWait: time.Second},
	}
	assert.Error(t, cfg.Validate())
}

func TestServerAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:5000", ServerConfig{Host: "0.0.0.0", Port: 5000}.Addr())
}
