package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"Ubermelon/internal/catalog"
	"Ubermelon/internal/config"
	"Ubermelon/internal/session"
	"Ubermelon/internal/storefront"
	"Ubermelon/pkg/kit"
)

const (
	service       = "ubermelon"
	startTimeout  = 10 * time.Second
	sweepInterval = 5 * time.Minute
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "loading .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := kit.NewLogger(service, cfg.App.LogLevel, cfg.App.IsDev())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatal("ubermelon stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	cat, err := catalog.Load(startCtx, cfg.Catalog.SourceConfig())
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	log.Info("catalog loaded",
		zap.String("source", cfg.Catalog.Source),
		zap.Int("melons", cat.Len()),
	)

	signer, err := session.NewSigner(cfg.App.SecretKey, cfg.Session.TTL)
	if err != nil {
		return err
	}

	sessions, closeSessions, err := openSessions(startCtx, cfg.Session, log)
	if err != nil {
		return err
	}
	defer closeSessions()

	views, err := storefront.NewViews()
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &storefront.Server{
		Catalog:  cat,
		Sessions: sessions,
		Views:    views,
		Log:      log,
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		Cookies: &session.Cookies{
			Signer: signer,
			Secure: cfg.Session.CookieSecure,
			Log:    log,
		},
		LoginRatePerMinute: cfg.Login.RatePerMinute,
		TrustProxy:         cfg.App.TrustProxy,
	})

	return kit.RunHTTPServer(ctx, ":"+cfg.App.Port, h, log)
}

func openSessions(ctx context.Context, cfg config.SessionConfig, log *zap.Logger) (session.Store, func(), error) {
	switch cfg.Backend {
	case config.SessionBackendRedis:
		rs, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		log.Info("session store ready", zap.String("backend", "redis"))
		return rs, func() { _ = rs.Close() }, nil

	default:
		ms := session.NewMemStore(cfg.TTL)
		done := make(chan struct{})
		go sweep(ms, done, log)
		log.Info("session store ready", zap.String("backend", "memory"))
		return ms, func() { close(done) }, nil
	}
}

func sweep(ms *session.MemStore, done <-chan struct{}, log *zap.Logger) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()

	for {
		select {
		case <-done:
			return
		case <-t.C:
			if n := ms.Sweep(); n > 0 {
				log.Debug("expired sessions swept", zap.Int("count", n), zap.Int("live", ms.Len()))
			}
		}
	}
}
