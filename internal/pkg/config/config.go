package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	CORSOrigins     string        `env:"CORS_ORIGINS,     default=*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Auth    AuthConfig
	License LicenseConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type AuthConfig struct {
	JWTSecret           string        `env:"JWT_SECRET"`
	TokenTTL            time.Duration `env:"TOKEN_TTL,             default=168h"`
	ResetTokenTTL       time.Duration `env:"RESET_TOKEN_TTL,       default=1h"`
	ExposeResetToken    bool          `env:"EXPOSE_RESET_TOKEN,    default=false"`
	ResetURL            string        `env:"RESET_URL"`
	ResetThrottleLimit  int64         `env:"RESET_THROTTLE_LIMIT,  default=5"`
	ResetThrottleWindow time.Duration `env:"RESET_THROTTLE_WINDOW, default=1h"`
	NotifyWorkers       int           `env:"NOTIFY_WORKERS,        default=4"`
}

type LicenseConfig struct {
	Prefix      string `env:"LICENSE_PREFIX, default=SCROLLFRAME-PRO"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=screengrabber"`
}

type RedisConfig struct {
	URL      string `env:"REDIS_URL"`
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	DB       int    `env:"REDIS_DB,        default=0"`
	Username string `env:"REDIS_USERNAME"`
	Password string `env:"REDIS_PASSWORD"`
	TLS      bool   `env:"REDIS_TLS,       default=false"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=0"`
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// AllowedOrigins splits CORSOrigins on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Load reads configuration from a .env file, when present, and environment
// variables. Variables already set in the environment take precedence.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	if cfg.Auth.ResetThrottleLimit < 0 {
		return nil, fmt.Errorf("RESET_THROTTLE_LIMIT must not be negative")
	}
	return &cfg, nil
}
