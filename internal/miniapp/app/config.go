package app

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-sourced settings for the backend. A local
// .env file is merged in first when present, so development does not need
// exported variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"` // Telegram bot token, shared secret for initData

	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	JWTAlgorithm    string        `envconfig:"JWT_ALGORITHM" default:"HS256"` // HS256, HS384 or HS512
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"` // 30 days
	InitDataMaxAge  time.Duration `envconfig:"INITDATA_MAX_AGE" default:"300s"`

	DatabaseFile   string `envconfig:"DATABASE_FILE" default:"miniapp.db"`
	LeadWebhookURL string `envconfig:"LEAD_WEBHOOK_URL"` // Optional: CRM webhook; forwarding disabled when empty

	CookieSecure   bool   `envconfig:"COOKIE_SECURE" default:"true"`
	CookieSameSite string `envconfig:"COOKIE_SAMESITE" default:"lax"` // lax, strict or none

	Env       string `envconfig:"ENV" default:"dev"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	Port                int           `envconfig:"PORT" default:"8080"`
	ShutdownGracePeriod time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"`
}

// LoadConfig reads configuration from a .env file (if present) and the
// process environment. The environment wins over the file.
func LoadConfig() (Config, error) {
	_ = godotenv.Load() // missing .env is fine

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
