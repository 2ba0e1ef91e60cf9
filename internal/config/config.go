package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port                  int           `envconfig:"PORT" default:"8080"`
	LogLevel              string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL           string        `envconfig:"DATABASE_URL" required:"true"`
	RedisAddr             string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword         string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB               int           `envconfig:"REDIS_DB" default:"0"`
	JWTSecret             string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer             string        `envconfig:"JWT_ISSUER" default:"collegepedia"`
	SessionTTL            time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SessionResolveTimeout time.Duration `envconfig:"SESSION_RESOLVE_TIMEOUT" default:"2s"`
	CookieSecure          bool          `envconfig:"COOKIE_SECURE" default:"true"`
	BcryptCost            int           `envconfig:"BCRYPT_COST" default:"12"`
	AdminUserID           string        `envconfig:"ADMIN_USER_ID" default:"81f62178-4163-4dd9-9c62-c5f9a6ca3221"`
	AdminDisplayName      string        `envconfig:"ADMIN_DISPLAY_NAME" default:"Nivethitha"`
	AutoMigrate           bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	Version               string        `envconfig:"VERSION" default:"dev"`
}

// Load reads configuration from environment variables into a Config struct.
// A .env file in the working directory is applied first when present; variables
// already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
