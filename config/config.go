package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/renning22/fmcp/pkg/utils"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"fmcp-trainer"`
	Version                       string   `env:"APP_VERSION" env-default:"dev"`
	Port                          int      `env:"PORT" env-default:"3000" validate:"gt=0,lte=65535"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5" validate:"gt=0"`

	// Session store backend: memory or redis
	SessionStore string `env:"SESSION_STORE" env-default:"memory" validate:"oneof=memory redis"`
	// How long an untouched session is kept
	SessionTTL time.Duration `env:"SESSION_TTL" env-default:"2h" validate:"gte=0"`
	// How long an event waits for another event on the same session
	SessionLockTimeout time.Duration `env:"SESSION_LOCK_TIMEOUT" env-default:"5s" validate:"gt=0"`

	// Redis host
	RedisHost string `env:"REDIS_HOST" env-default:"localhost"`
	// Redis port
	RedisPort int `env:"REDIS_PORT" env-default:"6379" validate:"gt=0,lte=65535"`
	// Redis password
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	// Redis database number
	RedisDB int `env:"REDIS_DB" env-default:"0" validate:"gte=0"`
	// Prefix for every key the service writes
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" env-default:"fmcp:"`

	// Tracing
	TracingEnabled bool   `env:"TRACING_ENABLED" env-default:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" env-default:""`
	OTLPProtocol   string `env:"OTLP_PROTOCOL" env-default:"grpc" validate:"oneof=grpc http"`
	OTLPInsecure   bool   `env:"OTLP_INSECURE" env-default:"true"`

	// Expose prometheus metrics on /metrics
	MetricsEnabled bool `env:"METRICS_ENABLED" env-default:"true"`
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if _, err := utils.Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
