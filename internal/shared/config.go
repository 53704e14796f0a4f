package shared

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const defaultContentAPI = "http://localhost:1337/"

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	ContentAPI    string
	APITimeout    time.Duration // 0 disables the client timeout
	SessionStore  string        // redis|memory
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	SessionTTL    time.Duration
	SessionMaxTTL time.Duration
	CookieSecure  bool
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("CONTENT_API_BASE_URL", defaultContentAPI)
	v.SetDefault("CONTENT_API_TIMEOUT_SECONDS", 0)
	v.SetDefault("SESSION_STORE", "redis")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL_SECONDS", 8*3600)
	v.SetDefault("SESSION_MAX_TTL_SECONDS", 30*24*3600)
	v.SetDefault("SESSION_COOKIE_SECURE", false)

	c := Config{
		AppEnv:        v.GetString("APP_ENV"),
		HTTPAddr:      v.GetString("HTTP_ADDR"),
		MetricsAddr:   v.GetString("METRICS_ADDR"),
		ContentAPI:    BaseURL(v.GetString("CONTENT_API_BASE_URL")),
		APITimeout:    time.Duration(v.GetInt("CONTENT_API_TIMEOUT_SECONDS")) * time.Second,
		SessionStore:  strings.ToLower(v.GetString("SESSION_STORE")),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPass:     v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		SessionTTL:    time.Duration(v.GetInt("SESSION_TTL_SECONDS")) * time.Second,
		SessionMaxTTL: time.Duration(v.GetInt("SESSION_MAX_TTL_SECONDS")) * time.Second,
		CookieSecure:  v.GetBool("SESSION_COOKIE_SECURE"),
	}
	if c.ContentAPI == defaultContentAPI && !IsDev(c.AppEnv) {
		log.Warn().Str("base", c.ContentAPI).Msg("CONTENT_API_BASE_URL is the localhost default")
	}
	if c.SessionStore != "redis" && c.SessionStore != "memory" {
		log.Warn().Str("store", c.SessionStore).Msg("unknown SESSION_STORE, using redis")
		c.SessionStore = "redis"
	}
	return c
}

// BaseURL makes sure relative endpoint paths can be appended directly.
func BaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return defaultContentAPI
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

func IsDev(env string) bool { return env == "dev" || env == "development" }
