package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HANKO_STORE_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected default port %q", cfg.Server.Port)
	}
	if cfg.Storefront.BaseURL != "" {
		t.Fatalf("expected empty backend URL by default, got %q", cfg.Storefront.BaseURL)
	}
	if cfg.Locales.Default != "ja" {
		t.Fatalf("unexpected default locale %q", cfg.Locales.Default)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("HANKO_STORE_PORT", "9090")
	t.Setenv("HANKO_STORE_API_URL", "https://api.example/storefront/")
	t.Setenv("HANKO_STORE_API_TIMEOUT", "5")
	t.Setenv("HANKO_STORE_SESSION_TTL", "24h")
	t.Setenv("HANKO_STORE_ENV", "prod")
	t.Setenv("HANKO_STORE_LOCALES", "EN, ja ,")
	t.Setenv("HANKO_STORE_DEFAULT_LOCALE", "en")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if cfg.Storefront.BaseURL != "https://api.example/storefront" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Storefront.BaseURL)
	}
	if cfg.Storefront.Timeout != 5*time.Second {
		t.Fatalf("expected bare-integer seconds, got %v", cfg.Storefront.Timeout)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("unexpected session TTL %v", cfg.Session.TTL)
	}
	if !cfg.Session.Secure {
		t.Fatalf("expected secure cookies in prod")
	}
	want := []string{"en", "ja"}
	if len(cfg.Locales.Supported) != len(want) {
		t.Fatalf("unexpected locales %v", cfg.Locales.Supported)
	}
	for i, l := range want {
		if cfg.Locales.Supported[i] != l {
			t.Fatalf("unexpected locales %v", cfg.Locales.Supported)
		}
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("HANKO_STORE_API_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparsable duration")
	}
}
