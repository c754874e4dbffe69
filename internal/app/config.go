package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/cafefusion/backend/pkg/httpmiddleware"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (CAFE_ prefix), flags, or YAML config files.
type Config struct {
	Addr             string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL      string `usage:"PostgreSQL connection URL (CAFE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	AllowAdminSignup bool   `default:"false" usage:"Let /auth/register create ADMIN accounts" flag:"allow-admin-signup"`
	JWT              JWTConfig
	Kafka            KafkaConfig
	RateLimit        RateLimitConfig
	CORS             CORSConfig
	Graceful         GracefulConfig
}

// JWTConfig controls bearer token signing.
type JWTConfig struct {
	Secret string        `usage:"HMAC secret for signing tokens (CAFE_JWT_SECRET)"`
	TTL    time.Duration `default:"24h" usage:"Token lifetime"`
	Issuer string        `default:"cafe-fusion" usage:"Token issuer claim"`
}

// KafkaConfig enables order status notifications when Brokers is set.
type KafkaConfig struct {
	Brokers string `usage:"Comma separated Kafka brokers; empty disables notifications"`
	Topic   string `default:"cafe.order-status" usage:"Topic for order status changes"`
}

// RateLimitConfig controls per-client throttling of login attempts.
type RateLimitConfig struct {
	Rate int           `default:"10" usage:"Login attempts allowed per window"`
	Per  time.Duration `default:"1m" usage:"Rate limit window duration"`
	// TrustedProxies are the peers allowed to set X-Forwarded-For. Empty
	// means the limiter keys on the connection address only.
	TrustedProxies []string `usage:"Proxy addresses or CIDRs whose X-Forwarded-For is honoured"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from a local .env file, environment
// variables and YAML config files, then applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CAFE",
		Args:      args,
		Files:     []string{"config.yaml", "/etc/cafe/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("database URL is required: set CAFE_DATABASE_URL or DATABASE_URL")
	case c.JWT.Secret == "":
		return errors.New("jwt secret is required: set CAFE_JWT_SECRET")
	case c.RateLimit.Rate <= 0 || c.RateLimit.Per <= 0:
		return errors.Errorf("invalid login rate limit %d/%s", c.RateLimit.Rate, c.RateLimit.Per)
	}
	if _, err := httpmiddleware.ParsePrefixes(c.RateLimit.TrustedProxies); err != nil {
		return errors.Wrap(err, "parse trusted proxies")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's CAFE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
