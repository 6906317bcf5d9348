package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the full configuration surface, loaded once at process start
// and immutable thereafter.
type Config struct {
	Port          string        `env:"PORT,              default=8080"`
	Env           string        `env:"ENV,               default=development"`
	JWTSecret     string        `env:"JWT_SECRET,        required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,         default=24h"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL,   default=http://localhost:8080"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	LogLevel      string        `env:"LOG_LEVEL,         default=info"`

	// InviteExpiryDays bounds how long a staff invite stays redeemable.
	InviteExpiryDays int `env:"INVITE_EXPIRY_DAYS, default=7"`

	Mongo    MongoConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Throttle ThrottleConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=pawacademy"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	From     string `env:"SMTP_FROM, default=no-reply@pawacademy.dog"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

// ThrottleConfig bounds failed login attempts per email per window.
type ThrottleConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS,   default=5"`
	Window      time.Duration `env:"LOGIN_ATTEMPT_WINDOW, default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
