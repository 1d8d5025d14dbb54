package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"admissions"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	DBPath     string `env:"DB_PATH" envDefault:"admissions.db"`

	JWTSecret  string        `env:"JWT_SECRET" envDefault:"secret"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"72h"`
	ServerPort string        `env:"SERVER_PORT" envDefault:"8080"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`

	// TrustedProxies lists the proxies whose ProxyHeader is believed for the
	// client IP. Empty means the header is ignored.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
	ProxyHeader    string   `env:"PROXY_HEADER" envDefault:"X-Forwarded-For"`

	// IdentityProvider selects how login codes are exchanged: "wechat" or "static".
	IdentityProvider string   `env:"IDENTITY_PROVIDER" envDefault:"wechat"`
	WeChatAppID      string   `env:"WECHAT_APP_ID"`
	WeChatSecret     string   `env:"WECHAT_SECRET"`
	WeChatBaseURL    string   `env:"WECHAT_BASE_URL" envDefault:"https://api.weixin.qq.com"`
	AdminIdentities  []string `env:"ADMIN_IDENTITIES" envSeparator:","`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"20"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
}

// LoadConfig reads .env when present, then the environment. Malformed typed
// values are an error.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AdminIdentities = cleanList(cfg.AdminIdentities)
	cfg.TrustedProxies = cleanList(cfg.TrustedProxies)
	return cfg, nil
}

// cleanList trims items and drops empty ones.
func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
