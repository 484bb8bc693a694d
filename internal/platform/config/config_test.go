package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.Production() {
		t.Errorf("expected local environment, got %s", cfg.Server.Environment)
	}
	if cfg.Site.DefaultLocale != "en" {
		t.Errorf("expected default locale en, got %s", cfg.Site.DefaultLocale)
	}
	if len(cfg.Site.SupportedLocales) != 2 || cfg.Site.SupportedLocales[1] != "ar" {
		t.Errorf("unexpected supported locales: %v", cfg.Site.SupportedLocales)
	}
	if cfg.Commerce.Configured() {
		t.Errorf("expected commerce to be unconfigured without credentials")
	}
	if cfg.Commerce.ShippingFallback.String() != "60" {
		t.Errorf("expected shipping fallback 60, got %s", cfg.Commerce.ShippingFallback)
	}
	if cfg.Commerce.PageSize != 50 {
		t.Errorf("unexpected page size: %d", cfg.Commerce.PageSize)
	}
	if cfg.Session.Secure {
		t.Errorf("expected insecure cookie outside production")
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Errorf("unexpected cache ttl: %s", cfg.Cache.TTL)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                      "7070",
		"LURAVIE_PORT":              "9090",
		"LURAVIE_SITE_URL":          "https://luravie.example/",
		"WC_BASE_URL":               "https://shop.example/",
		"WC_CONSUMER_KEY":           "ck_123",
		"WC_CONSUMER_SECRET":        "cs_456",
		"WC_TIMEOUT":                "3s",
		"WC_PAGE_SIZE":              "25",
		"LURAVIE_SHIPPING_FALLBACK": "75.50",
		"LURAVIE_CACHE_TTL":         "0s",
		"REDIS_ADDR":                "localhost:6379",
		"REDIS_DB":                  "2",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected LURAVIE_PORT to win over PORT, got %s", cfg.Server.Port)
	}
	if cfg.Site.BaseURL != "https://luravie.example" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Site.BaseURL)
	}
	if !cfg.Commerce.Configured() {
		t.Fatalf("expected commerce to be configured")
	}
	if cfg.Commerce.BaseURL != "https://shop.example" {
		t.Errorf("unexpected commerce base url %s", cfg.Commerce.BaseURL)
	}
	if cfg.Commerce.Timeout != 3*time.Second || cfg.Commerce.PageSize != 25 {
		t.Errorf("unexpected commerce tuning: %s / %d", cfg.Commerce.Timeout, cfg.Commerce.PageSize)
	}
	if cfg.Commerce.ShippingFallback.String() != "75.5" {
		t.Errorf("unexpected shipping fallback %s", cfg.Commerce.ShippingFallback)
	}
	if cfg.Cache.TTL != 0 || cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.RedisDB != 2 {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
}

func TestLoadFallsBackToPortVariable(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{"PORT": "7070"}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected PORT fallback, got %s", cfg.Server.Port)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"LURAVIE_ENV":               "production",
		"WC_PAGE_SIZE":              "500",
		"LURAVIE_SHIPPING_FALLBACK": "free",
		"LURAVIE_SESSION_BLOCK_KEY": "short",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	want := map[string]bool{
		"Commerce.ShippingFallback": false,
		"Commerce.PageSize":         false,
		"Session.BlockKey":          false,
		"Session.HashKey":           false,
	}
	for _, field := range vErr.Fields() {
		if _, ok := want[field]; ok {
			want[field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("expected %s in validation fields %v", field, vErr.Fields())
		}
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nWC_BASE_URL=https://dotenv.example\nWC_CONSUMER_KEY=\"ck_dot\"\nWC_CONSUMER_SECRET=cs_dot\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(context.Background(),
		WithEnvFile(path),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{"WC_CONSUMER_SECRET": "cs_map"}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Commerce.ConsumerKey != "ck_dot" {
		t.Errorf("expected quoted dotenv value to be unwrapped, got %q", cfg.Commerce.ConsumerKey)
	}
	if cfg.Commerce.ConsumerSecret != "cs_map" {
		t.Errorf("expected env map to override dotenv, got %q", cfg.Commerce.ConsumerSecret)
	}
}

func TestLoadIgnoresMissingDotEnv(t *testing.T) {
	_, err := Load(context.Background(), WithEnvFile(filepath.Join(t.TempDir(), "missing.env")), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"LURAVIE_CACHE_TTL":      "soon",
		"REDIS_DB":               "zero",
		"LURAVIE_SESSION_SECURE": "maybe",
	}))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got := strings.Join(vErr.Fields(), ",")
	for _, field := range []string{"Cache.TTL", "Cache.RedisDB", "Session.Secure"} {
		if !strings.Contains(got, field) {
			t.Errorf("expected %s in %s", field, got)
		}
	}
}
