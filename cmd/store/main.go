package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/hanko-store/internal/catalog"
	"finitefield.org/hanko-store/internal/config"
	"finitefield.org/hanko-store/internal/handlers"
	"finitefield.org/hanko-store/internal/i18n"
	mw "finitefield.org/hanko-store/internal/middleware"
	"finitefield.org/hanko-store/internal/observability"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	bundle, err := i18n.Load(cfg.Locales.Dir, cfg.Locales.Default, cfg.Locales.Supported)
	if err != nil {
		logger.Fatal("load locales", zap.Error(err))
	}

	store := catalog.NewClient(cfg.Storefront.BaseURL,
		catalog.WithAccessToken(cfg.Storefront.AccessToken),
		catalog.WithTimeout(cfg.Storefront.Timeout),
	)
	if cfg.Storefront.BaseURL == "" {
		logger.Warn("no storefront API configured, serving the built-in demo catalog")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(chimw.RealIP)
	r.Use(mw.Metrics)
	r.Use(mw.Sessions(mw.SessionConfig{
		SigningKey: []byte(cfg.Session.SigningKey),
		Secure:     cfg.Session.Secure,
		TTL:        cfg.Session.TTL,
	}))
	r.Use(mw.Locale(bundle))
	r.Use(mw.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.Server.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", mw.MetricsHandler())

	product := handlers.NewProductHandlers(store, bundle, bundle.Supported(), logger)
	product.Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	logger.Info("store listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("listen", zap.Error(err))
	}
}
