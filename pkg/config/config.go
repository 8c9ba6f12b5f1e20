// Package config - application configuration management
// Loads YAML config (configs/development.yaml or production.yaml) layered
// with environment variable overrides, via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	TCP       TCPConfig
	UDP       UDPConfig
	GRPC      GRPCConfig
	WebSocket WebSocketConfig
	SSE       SSEConfig
	Admin     AdminConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	External  ExternalConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Mode         string        `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
	Issuer     string        `mapstructure:"issuer"`
}

// TCPConfig configures the progress bus (C2): Port is the data port,
// AdminPort the HTTP trigger listener (spec §4.2/§9 Open Question #3).
type TCPConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	AdminPort      int           `mapstructure:"admin_port"`
	MaxConnections int           `mapstructure:"max_connections"`
	BufferSize     int           `mapstructure:"buffer_size"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	HeartbeatEvery time.Duration `mapstructure:"heartbeat_every"`
}

// UDPConfig configures the notification bus (C3): Port is the datagram
// socket, AdminPort the HTTP trigger listener.
type UDPConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	AdminPort     int           `mapstructure:"admin_port"`
	BufferSize    int           `mapstructure:"buffer_size"`
	HeartbeatEvery time.Duration `mapstructure:"heartbeat_every"`
	EvictAfter    time.Duration `mapstructure:"evict_after"`
}

type GRPCConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type WebSocketConfig struct {
	Host             string        `mapstructure:"host"`
	ReadBufferSize   int           `mapstructure:"read_buffer_size"`
	WriteBufferSize  int           `mapstructure:"write_buffer_size"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	PingPeriod       time.Duration `mapstructure:"ping_period"`
	MaxMessageSize   int64         `mapstructure:"max_message_size"`
	SendBuffer       int           `mapstructure:"send_buffer"`
	RoomIdleTimeout  time.Duration `mapstructure:"room_idle_timeout"`
}

// SSEConfig configures the gateway's /sse/progress and /sse/notifications
// bridge endpoints.
type SSEConfig struct {
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval"`
	ClientBuffer      int           `mapstructure:"client_buffer"`
}

// AdminConfig carries the internal-only trigger URLs the gateway calls on
// state change, and the timeout enforced on each call.
type AdminConfig struct {
	TCPTriggerURL string        `mapstructure:"tcp_trigger_url"`
	UDPTriggerURL string        `mapstructure:"udp_trigger_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig configures the gateway's Redis-backed fixed one-minute
// window.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	MaxRequestSizeMB  int `mapstructure:"max_request_size_mb"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ExternalConfig configures the remote-catalog fallback clients.
type ExternalConfig struct {
	MangaDex MangaDexConfig `mapstructure:"mangadex"`
	Jikan    JikanConfig    `mapstructure:"jikan"`
}

type MangaDexConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"`
}

type JikanConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load reads configuration from file, layered with environment variables.
func Load(configPath string) (*Config, error) {
	viper.SetConfigName("development")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// bindEnv binds the environment variable names named in spec §6 to their
// nested config keys, since their shapes don't match the PORT/HOST_KEY
// auto-replacement pattern.
func bindEnv() {
	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("tcp.host", "TCP_SERVER_ADDR")
	_ = viper.BindEnv("udp.host", "UDP_SERVER_ADDR")
	_ = viper.BindEnv("admin.tcp_trigger_url", "TCP_ADMIN_TRIGGER_URL")
	_ = viper.BindEnv("admin.udp_trigger_url", "UDP_ADMIN_TRIGGER_URL")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("cors.allow_origins", "CORS_ALLOW_ORIGINS")
	_ = viper.BindEnv("rate_limit.requests_per_minute", "RATE_LIMIT_REQUESTS_PER_MINUTE")
	_ = viper.BindEnv("rate_limit.max_request_size_mb", "MAX_REQUEST_SIZE_MB")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("database.path", "./data/mangahub.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	viper.SetDefault("jwt.secret", "your-secret-key-change-in-production")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("jwt.issuer", "mangahub")

	viper.SetDefault("tcp.host", "localhost")
	viper.SetDefault("tcp.port", 9090)
	viper.SetDefault("tcp.admin_port", 9190)
	viper.SetDefault("tcp.max_connections", 1000)
	viper.SetDefault("tcp.buffer_size", 4096)
	viper.SetDefault("tcp.idle_timeout", "90s")
	viper.SetDefault("tcp.heartbeat_every", "30s")

	viper.SetDefault("udp.host", "localhost")
	viper.SetDefault("udp.port", 9091)
	viper.SetDefault("udp.admin_port", 9191)
	viper.SetDefault("udp.buffer_size", 2048)
	viper.SetDefault("udp.heartbeat_every", "25s")
	viper.SetDefault("udp.evict_after", "30s")

	viper.SetDefault("grpc.host", "localhost")
	viper.SetDefault("grpc.port", 9092)

	viper.SetDefault("websocket.host", "localhost")
	viper.SetDefault("websocket.read_buffer_size", 1024)
	viper.SetDefault("websocket.write_buffer_size", 1024)
	viper.SetDefault("websocket.handshake_timeout", "10s")
	viper.SetDefault("websocket.ping_period", "54s")
	viper.SetDefault("websocket.max_message_size", 512000)
	viper.SetDefault("websocket.send_buffer", 32)
	viper.SetDefault("websocket.room_idle_timeout", "10m")

	viper.SetDefault("sse.keep_alive_interval", "30s")
	viper.SetDefault("sse.client_buffer", 32)

	viper.SetDefault("admin.tcp_trigger_url", "http://localhost:9190/trigger")
	viper.SetDefault("admin.udp_trigger_url", "http://localhost:9191/trigger")
	viper.SetDefault("admin.timeout", "5s")

	viper.SetDefault("cors.allow_origins", []string{"*"})

	viper.SetDefault("rate_limit.requests_per_minute", 120)
	viper.SetDefault("rate_limit.max_request_size_mb", 5)

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("external.mangadex.base_url", "https://api.mangadex.org")
	viper.SetDefault("external.mangadex.timeout", "10s")
	viper.SetDefault("external.mangadex.rate_limit", 5)
	viper.SetDefault("external.jikan.base_url", "https://api.jikan.moe/v4")
	viper.SetDefault("external.jikan.timeout", "10s")
	viper.SetDefault("external.jikan.rate_limit", 3)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}
