// Package config resolves runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultRequestTimeout  = 30 * time.Second
	defaultStorefrontLimit = 8 * time.Second
	defaultSessionTTL      = 30 * 24 * time.Hour
	defaultLocale          = "ja"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server     ServerConfig
	Storefront StorefrontConfig
	Session    SessionConfig
	Locales    LocaleConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// StorefrontConfig points at the commerce backend. An empty BaseURL selects the
// built-in fake catalog so the server runs standalone.
type StorefrontConfig struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
	TTL        time.Duration
}

// LocaleConfig lists the path-prefix locales served by the storefront.
type LocaleConfig struct {
	Default   string
	Supported []string
	Dir       string
}

// Load reads configuration from the process environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Port:           envOr("HANKO_STORE_PORT", envOr("PORT", defaultPort)),
			ReadTimeout:    defaultReadTimeout,
			WriteTimeout:   defaultWriteTimeout,
			IdleTimeout:    defaultIdleTimeout,
			RequestTimeout: defaultRequestTimeout,
		},
		Storefront: StorefrontConfig{
			BaseURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("HANKO_STORE_API_URL")), "/"),
			AccessToken: strings.TrimSpace(os.Getenv("HANKO_STORE_API_TOKEN")),
			Timeout:     defaultStorefrontLimit,
		},
		Session: SessionConfig{
			SigningKey: os.Getenv("HANKO_STORE_SESSION_SIGNING_KEY"),
			Secure:     strings.EqualFold(os.Getenv("HANKO_STORE_ENV"), "prod"),
			TTL:        defaultSessionTTL,
		},
		Locales: LocaleConfig{
			Default:   envOr("HANKO_STORE_DEFAULT_LOCALE", defaultLocale),
			Supported: splitList(envOr("HANKO_STORE_LOCALES", "ja,en")),
			Dir:       envOr("HANKO_STORE_LOCALES_DIR", "locales"),
		},
	}

	if d, err := envDuration("HANKO_STORE_API_TIMEOUT"); err != nil {
		return Config{}, err
	} else if d > 0 {
		cfg.Storefront.Timeout = d
	}
	if d, err := envDuration("HANKO_STORE_SESSION_TTL"); err != nil {
		return Config{}, err
	} else if d > 0 {
		cfg.Session.TTL = d
	}

	if !contains(cfg.Locales.Supported, cfg.Locales.Default) {
		cfg.Locales.Supported = append(cfg.Locales.Supported, cfg.Locales.Default)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
