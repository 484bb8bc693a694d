package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultEnvironment      = "local"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultSiteURL          = "http://localhost:8080"
	defaultLocale           = "en"
	defaultCommerceTimeout  = 10 * time.Second
	defaultCommercePageSize = 50
	defaultShippingFallback = "60"
	defaultSessionCookie    = "luravie_session"
	defaultLocaleCookie     = "luravie_hl"
	defaultCacheTTL         = 2 * time.Minute

	// EnvironmentProduction is the only environment that demands explicit session keys.
	EnvironmentProduction = "production"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Site     SiteConfig
	Commerce CommerceConfig
	Session  SessionConfig
	Cache    CacheConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Production reports whether the server runs in the production environment.
func (s ServerConfig) Production() bool {
	return strings.EqualFold(s.Environment, EnvironmentProduction)
}

// SiteConfig controls public URLs and localisation.
type SiteConfig struct {
	BaseURL          string
	DefaultLocale    string
	SupportedLocales []string
	LocaleCookie     string
}

// CommerceConfig points at the upstream commerce REST API.
type CommerceConfig struct {
	BaseURL          string
	ConsumerKey      string
	ConsumerSecret   string
	Timeout          time.Duration
	PageSize         int
	ShippingFallback decimal.Decimal
}

// Configured reports whether every credential needed to reach the upstream is present.
// An unconfigured upstream is valid and makes the storefront serve its seed catalog.
func (c CommerceConfig) Configured() bool {
	return strings.TrimSpace(c.BaseURL) != "" &&
		strings.TrimSpace(c.ConsumerKey) != "" &&
		strings.TrimSpace(c.ConsumerSecret) != ""
}

// SessionConfig controls the cart/favorites cookie.
type SessionConfig struct {
	CookieName string
	HashKey    []byte
	BlockKey   []byte
	Secure     bool
	MaxAge     time.Duration
}

// CacheConfig controls catalog snapshot caching. A zero TTL disables it.
type CacheConfig struct {
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile reads overrides from path instead of ./.env. An empty path skips the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap supplies values that win over the process environment and the .env file.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load assembles the configuration. Each key is looked up in the explicit
// map, then the process environment, then the .env file, then defaults.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := readDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}
	e := &env{layers: []map[string]string{options.envMap, dotEnv}, system: options.useSystemEnv}

	cfg := Config{
		Server: ServerConfig{
			Port:         e.str("LURAVIE_PORT", e.str("PORT", defaultPort)),
			Environment:  strings.ToLower(e.str("LURAVIE_ENV", defaultEnvironment)),
			ReadTimeout:  e.duration("LURAVIE_READ_TIMEOUT", "Server.ReadTimeout", defaultReadTimeout),
			WriteTimeout: e.duration("LURAVIE_WRITE_TIMEOUT", "Server.WriteTimeout", defaultWriteTimeout),
			IdleTimeout:  e.duration("LURAVIE_IDLE_TIMEOUT", "Server.IdleTimeout", defaultIdleTimeout),
		},
		Site: SiteConfig{
			BaseURL:          strings.TrimRight(e.str("LURAVIE_SITE_URL", defaultSiteURL), "/"),
			DefaultLocale:    e.str("LURAVIE_DEFAULT_LOCALE", defaultLocale),
			SupportedLocales: e.list("LURAVIE_SUPPORTED_LOCALES", "en", "ar"),
			LocaleCookie:     e.str("LURAVIE_LOCALE_COOKIE", defaultLocaleCookie),
		},
		Commerce: CommerceConfig{
			BaseURL:          strings.TrimRight(e.str("WC_BASE_URL", ""), "/"),
			ConsumerKey:      e.str("WC_CONSUMER_KEY", ""),
			ConsumerSecret:   e.str("WC_CONSUMER_SECRET", ""),
			Timeout:          e.duration("WC_TIMEOUT", "Commerce.Timeout", defaultCommerceTimeout),
			PageSize:         e.integer("WC_PAGE_SIZE", "Commerce.PageSize", defaultCommercePageSize),
			ShippingFallback: e.money("LURAVIE_SHIPPING_FALLBACK", "Commerce.ShippingFallback", defaultShippingFallback),
		},
		Session: SessionConfig{
			CookieName: e.str("LURAVIE_SESSION_COOKIE", defaultSessionCookie),
			HashKey:    []byte(e.str("LURAVIE_SESSION_HASH_KEY", "")),
			BlockKey:   []byte(e.str("LURAVIE_SESSION_BLOCK_KEY", "")),
			MaxAge:     e.duration("LURAVIE_SESSION_MAX_AGE", "Session.MaxAge", 30*24*time.Hour),
		},
		Cache: CacheConfig{
			TTL:           e.duration("LURAVIE_CACHE_TTL", "Cache.TTL", defaultCacheTTL),
			RedisAddr:     e.str("REDIS_ADDR", ""),
			RedisPassword: e.str("REDIS_PASSWORD", ""),
			RedisDB:       e.integer("REDIS_DB", "Cache.RedisDB", 0),
		},
	}
	cfg.Session.Secure = e.boolean("LURAVIE_SESSION_SECURE", "Session.Secure", cfg.Server.Production())

	if err := validateConfig(cfg, e.invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	} else if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		missing = append(missing, "Server.Port")
	}
	if _, err := url.ParseRequestURI(cfg.Site.BaseURL); err != nil {
		missing = append(missing, "Site.BaseURL")
	}
	if !slices.Contains(cfg.Site.SupportedLocales, cfg.Site.DefaultLocale) {
		missing = append(missing, "Site.DefaultLocale")
	}
	if cfg.Commerce.BaseURL != "" {
		if u, err := url.Parse(cfg.Commerce.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			missing = append(missing, "Commerce.BaseURL")
		}
	}
	if cfg.Commerce.PageSize <= 0 || cfg.Commerce.PageSize > 100 {
		missing = append(missing, "Commerce.PageSize")
	}
	if cfg.Commerce.Timeout <= 0 {
		missing = append(missing, "Commerce.Timeout")
	}
	if cfg.Session.CookieName == "" {
		missing = append(missing, "Session.CookieName")
	}
	if n := len(cfg.Session.HashKey); n > 0 && n < 32 {
		missing = append(missing, "Session.HashKey")
	}
	if n := len(cfg.Session.BlockKey); n > 0 && n != 16 && n != 24 && n != 32 {
		missing = append(missing, "Session.BlockKey")
	}
	if cfg.Server.Production() && len(cfg.Session.HashKey) == 0 {
		missing = append(missing, "Session.HashKey")
	}
	if cfg.Cache.TTL < 0 {
		missing = append(missing, "Cache.TTL")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

// readDotEnv returns the values of the .env file at path, or nil when there is none.
func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	values, err := godotenv.Read(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

// env resolves keys across the configured sources. Values that are present
// but unparsable are recorded in invalid under their field name.
type env struct {
	// layers[0] wins over the process environment; later layers lose to it.
	layers  []map[string]string
	system  bool
	invalid []string
}

func (e *env) lookup(key string) (string, bool) {
	if v, ok := e.layers[0][key]; ok {
		return strings.TrimSpace(v), true
	}
	if e.system {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v), true
		}
	}
	for _, layer := range e.layers[1:] {
		if v, ok := layer[key]; ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func (e *env) str(key, fallback string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

func (e *env) duration(key, field string, fallback time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.invalid = append(e.invalid, field)
		return fallback
	}
	return d
}

func (e *env) integer(key, field string, fallback int) int {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.invalid = append(e.invalid, field)
		return fallback
	}
	return n
}

func (e *env) boolean(key, field string, fallback bool) bool {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	e.invalid = append(e.invalid, field)
	return fallback
}

// money parses a non-negative decimal amount.
func (e *env) money(key, field, fallback string) decimal.Decimal {
	amount, err := decimal.NewFromString(e.str(key, fallback))
	if err != nil || amount.IsNegative() {
		e.invalid = append(e.invalid, field)
		return decimal.RequireFromString(fallback)
	}
	return amount
}

// list splits a comma separated value, dropping blanks.
func (e *env) list(key string, fallback ...string) []string {
	var out []string
	for _, part := range strings.Split(e.str(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
