package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/catalog"
	"github.com/luravie/storefront/internal/checkout"
	"github.com/luravie/storefront/internal/commerce"
	"github.com/luravie/storefront/internal/content"
	"github.com/luravie/storefront/internal/i18n"
	"github.com/luravie/storefront/internal/platform/cache"
	"github.com/luravie/storefront/internal/platform/config"
	"github.com/luravie/storefront/internal/platform/observability"
	"github.com/luravie/storefront/internal/session"
	"github.com/luravie/storefront/internal/web"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger(observability.WithEnvironment(os.Getenv("LURAVIE_ENV")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	store, closeStore := newCache(ctx, logger, cfg.Cache)
	defer closeStore()

	client := commerce.NewClient(cfg.Commerce.BaseURL, cfg.Commerce.ConsumerKey, cfg.Commerce.ConsumerSecret,
		commerce.WithTimeout(cfg.Commerce.Timeout),
		commerce.WithPerPage(cfg.Commerce.PageSize),
	)
	if !client.Configured() {
		logger.Warn("commerce upstream not configured; serving seed catalog and refusing orders")
	}

	reporter := observability.NewLogReporter(logger.Named("commerce"))
	catalogService := catalog.NewService(client,
		catalog.WithReporter(reporter),
		catalog.WithCache(store, cfg.Cache.TTL),
	)
	checkoutService := checkout.NewService(client, client,
		checkout.WithFallbackShipping(cfg.Commerce.ShippingFallback),
		checkout.WithReporter(reporter),
		checkout.WithCache(store, cfg.Cache.TTL),
	)

	hashKey, blockKey := cfg.Session.HashKey, cfg.Session.BlockKey
	if len(hashKey) == 0 {
		logger.Warn("session keys not configured; generating ephemeral keys")
		hashKey, blockKey = session.GenerateKeys()
	}
	sessions, err := session.NewManager(session.Config{
		CookieName: cfg.Session.CookieName,
		HashKey:    hashKey,
		BlockKey:   blockKey,
		Secure:     cfg.Session.Secure,
		MaxAge:     cfg.Session.MaxAge,
	})
	if err != nil {
		logger.Fatal("failed to initialise session manager", zap.Error(err))
	}

	bundle, err := i18n.Load(cfg.Site.DefaultLocale, cfg.Site.SupportedLocales)
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}

	router, err := web.NewRouter(web.Deps{
		Logger:         logger,
		Catalog:        catalogService,
		Checkout:       checkoutService,
		Sessions:       sessions,
		Bundle:         bundle,
		Pages:          content.NewLibrary(cfg.Site.DefaultLocale),
		LocaleCookie:   cfg.Site.LocaleCookie,
		SecureCookies:  cfg.Session.Secure,
		RequestTimeout: cfg.Server.WriteTimeout,
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr), zap.String("env", cfg.Server.Environment))
	go func() {
		serverLogger.Info("luravie storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newCache prefers Redis when an address is configured and falls back to the
// in-process store when it is absent or unreachable.
func newCache(ctx context.Context, logger *zap.Logger, cfg config.CacheConfig) (cache.Store, func()) {
	if cfg.TTL <= 0 {
		return cache.Nop{}, func() {}
	}
	if cfg.RedisAddr == "" {
		return cache.NewMemory(), func() {}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	redisStore, err := cache.NewRedis(pingCtx, cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   "luravie:",
	})
	if err != nil {
		logger.Warn("redis unavailable; using in-memory cache", zap.Error(err))
		return cache.NewMemory(), func() {}
	}
	return redisStore, func() {
		if err := redisStore.Close(); err != nil {
			logger.Warn("redis close error", zap.Error(err))
		}
	}
}
