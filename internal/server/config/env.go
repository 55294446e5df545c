package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/newsnow/internal/timex"
	"github.com/joho/godotenv"
)

// parseEnv loads an optional .env file (path from ENV_FILE, default ".env")
// and overlays recognised environment variables onto config. Variables
// already present in the process environment win over the file.
//
// Malformed numeric, boolean or duration values panic, like a broken JSON file.
func parseEnv(config *Config) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		panic(fmt.Errorf("load %s: %w", envFile, err))
	}

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		if strings.Contains(v, ":") {
			config.EndpointAddrHTTP = v
		} else {
			config.EndpointAddrHTTP = ":" + v
		}
	}
	setString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SecretKey, "JWT_SECRET")

	if v, ok := lookup("ACCESSTOKEN_EXPIRY"); ok {
		config.AccessTokenValidityDuration = mustDuration("ACCESSTOKEN_EXPIRY", v)
	}
	if v, ok := lookup("REFRESHTOKEN_EXPIRY"); ok {
		config.RefreshTokenValidityDuration = mustDuration("REFRESHTOKEN_EXPIRY", v)
	}
	if v, ok := lookup("ROTATE_REFRESH_TOKENS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("ROTATE_REFRESH_TOKENS: %w", err))
		}
		config.RotateRefreshTokens = b
	}

	setString(&config.Environment, "NODE_ENV")
	setString(&config.Environment, "APP_ENV")
	setString(&config.CookieDomain, "COOKIE_DOMAIN")
	setString(&config.CookieSameSite, "COOKIE_SAMESITE")

	if v, ok := lookup("CORS_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}

	setString(&config.RedisAddr, "REDIS_ADDR")
	if v, ok := lookup("LOGIN_RATE_LIMIT"); ok {
		config.LoginRateLimit = mustInt("LOGIN_RATE_LIMIT", v)
	}
	if v, ok := lookup("LOGIN_RATE_WINDOW"); ok {
		config.LoginRateWindow = mustDuration("LOGIN_RATE_WINDOW", v)
	}

	setString(&config.LogLevel, "LOG_LEVEL")
	if v, ok := lookup("BCRYPT_COST"); ok {
		config.BcryptCost = mustInt("BCRYPT_COST", v)
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func mustInt(key, v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	return n
}

func mustDuration(key, v string) time.Duration {
	d, err := timex.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	return d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
