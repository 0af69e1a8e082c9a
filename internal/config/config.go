package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/srujan5570/Communications-App/pkg/config"
	"github.com/srujan5570/Communications-App/pkg/database"
	pkglog "github.com/srujan5570/Communications-App/pkg/log"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Auth      AuthConfig
	Messaging MessagingConfig
	Presence  PresenceConfig
	Database  database.Config
	Redis     RedisConfig
	Kafka     KafkaConfig
	WebRTC    WebRTCConfig
	Log       pkglog.Config
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type WebSocketConfig struct {
	PingInterval     time.Duration `mapstructure:"ping_interval"`
	PongWait         time.Duration `mapstructure:"pong_wait"`
	WriteWait        time.Duration `mapstructure:"write_wait"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	MaxMessageSize   int64         `mapstructure:"max_message_size"`
	SendBuffer       int           `mapstructure:"send_buffer"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	Issuer        string        `mapstructure:"issuer"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
}

type MessagingConfig struct {
	MaxContentLength int `mapstructure:"max_content_length"`
}

type PresenceConfig struct {
	Broadcast bool
}

type RedisConfig struct {
	Enabled     bool
	Address     string
	Password    string
	DB          int
	CachePrefix string        `mapstructure:"cache_prefix"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    string
	Topic      string
	Partitions int
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("websocket.ping_interval", "25s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.handshake_timeout", "10s")
	v.SetDefault("websocket.max_message_size", 1<<20)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.token_duration", "168h")
	v.SetDefault("messaging.max_content_length", 4096)
	v.SetDefault("presence.broadcast", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "relay.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_prefix", "relay:history:")
	v.SetDefault("redis.cache_ttl", "5m")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "message-events")
	v.SetDefault("kafka.partitions", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.service_name", "relay-service")

	// Override from environment
	if err := pkgconfig.BindEnv(v, map[string]string{
		"server.port":        "PORT",
		"auth.jwt_secret":    "JWT_SECRET",
		"auth.issuer":        "JWT_ISSUER",
		"database.driver":    "DATABASE_DRIVER",
		"database.host":      "DATABASE_HOST",
		"database.port":      "DATABASE_PORT",
		"database.user":      "DATABASE_USER",
		"database.password":  "DATABASE_PASSWORD",
		"database.dbname":    "DATABASE_NAME",
		"database.file_path": "DATABASE_FILE_PATH",
		"redis.enabled":      "REDIS_ENABLED",
		"redis.address":      "REDIS_ADDRESS",
		"redis.password":     "REDIS_PASSWORD",
		"kafka.enabled":      "KAFKA_ENABLED",
		"kafka.brokers":      "KAFKA_BROKERS",
		"kafka.topic":        "KAFKA_MESSAGE_TOPIC",
		"webrtc.turn_key_id": "CF_TURN_ID",
		"webrtc.turn_key":    "CF_TURN_KEY",
		"log.level":          "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Server.ShutdownTimeout = pkgconfig.Duration(v, "server.shutdown_timeout", 15*time.Second)
	cfg.WebSocket.PingInterval = pkgconfig.Duration(v, "websocket.ping_interval", 25*time.Second)
	cfg.WebSocket.PongWait = pkgconfig.Duration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = pkgconfig.Duration(v, "websocket.write_wait", 10*time.Second)
	cfg.WebSocket.HandshakeTimeout = pkgconfig.Duration(v, "websocket.handshake_timeout", 10*time.Second)
	cfg.Auth.TokenDuration = pkgconfig.Duration(v, "auth.token_duration", 7*24*time.Hour)
	cfg.Redis.CacheTTL = pkgconfig.Duration(v, "redis.cache_ttl", 5*time.Minute)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings the relay cannot run without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (JWT_SECRET) is required")
	}
	if c.WebSocket.PingInterval >= c.WebSocket.PongWait {
		return fmt.Errorf("websocket.ping_interval (%s) must be shorter than websocket.pong_wait (%s)",
			c.WebSocket.PingInterval, c.WebSocket.PongWait)
	}
	if c.WebSocket.SendBuffer <= 0 {
		c.WebSocket.SendBuffer = 256
	}
	if c.Messaging.MaxContentLength < 0 {
		c.Messaging.MaxContentLength = 0
	}
	return nil
}
