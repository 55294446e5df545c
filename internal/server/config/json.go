package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/newsnow/internal/flagx"
	"github.com/dmitrijs2005/newsnow/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Durations accept strings such as "15m" or "7d" and integer nanoseconds.
// Zero values leave the corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	RotateRefreshTokens          *bool          `json:"rotate_refresh_tokens"`
	Environment                  string         `json:"environment"`
	CookieDomain                 string         `json:"cookie_domain"`
	CookieSameSite               string         `json:"cookie_same_site"`
	AllowedOrigins               []string       `json:"allowed_origins"`
	RedisAddr                    string         `json:"redis_addr"`
	LoginRateLimit               int            `json:"login_rate_limit"`
	LoginRateWindow              timex.Duration `json:"login_rate_window"`
	LogLevel                     string         `json:"log_level"`
	BcryptCost                   int            `json:"bcrypt_cost"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag. Without the flag nothing is loaded. An unreadable
// file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	overlay(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration.Duration)
	if c.RotateRefreshTokens != nil {
		config.RotateRefreshTokens = *c.RotateRefreshTokens
	}
	overlay(&config.Environment, c.Environment)
	overlay(&config.CookieDomain, c.CookieDomain)
	overlay(&config.CookieSameSite, c.CookieSameSite)
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	overlay(&config.RedisAddr, c.RedisAddr)
	overlay(&config.LoginRateLimit, c.LoginRateLimit)
	overlay(&config.LoginRateWindow, c.LoginRateWindow.Duration)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.BcryptCost, c.BcryptCost)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
