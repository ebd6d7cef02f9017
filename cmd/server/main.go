package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"openid-gateway/internal/authenticate"
	"openid-gateway/internal/clients"
	"openid-gateway/internal/consent"
	"openid-gateway/internal/identity"
	"openid-gateway/internal/nonce"
	"openid-gateway/internal/platform/config"
	"openid-gateway/internal/platform/httpserver"
	"openid-gateway/internal/platform/logger"
	"openid-gateway/internal/platform/metrics"
	"openid-gateway/internal/platform/middleware"
	"openid-gateway/internal/platform/postgres"
	platformredis "openid-gateway/internal/platform/redis"
	"openid-gateway/internal/router"
	auditpublisher "openid-gateway/pkg/platform/audit/publisher"
	auditkafka "openid-gateway/pkg/platform/audit/sink/kafka"
	auditmemory "openid-gateway/pkg/platform/audit/sink/memory"
	"openid-gateway/pkg/requestcontext"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry, err := buildClientRegistry(ctx, cfg, log)
	if err != nil {
		log.Error("client registry init failed", "error", err)
		os.Exit(1)
	}
	decisions, err := buildDecisionStore(ctx, cfg)
	if err != nil {
		log.Error("consent store init failed", "error", err)
		os.Exit(1)
	}

	users := identity.NewInMemoryStore()
	bootstrap := identity.SeedBootstrapUser(users, cfg.MinimalCapability)
	log.Info("using in-memory user directory", "bootstrap_user", bootstrap.Login)
	sessions := identity.NewSessionValidator(cfg.SessionSigningKey, users)
	nonces := nonce.NewService(cfg.NonceSigningKey, cfg.NonceTTL)

	auditSink, err := buildAuditSink(cfg, log)
	if err != nil {
		log.Error("audit sink init failed", "error", err)
		os.Exit(1)
	}
	auditPub := auditpublisher.NewPublisher(auditSink, log, auditpublisher.WithAsyncBuffer(256))
	defer auditPub.Close()

	rt := router.New(cfg.Issuer, log, m)
	controller := authenticate.New(authenticate.Config{
		Clients:           registry,
		Decisions:         decisions,
		Nonces:            nonces,
		LoginURL:          cfg.LoginURL,
		SelfURL:           rt.RestURL("authenticate"),
		AuthorizeURL:      rt.RestURL("authorize"),
		SiteName:          cfg.Issuer,
		MinimalCapability: cfg.MinimalCapability,
		Logger:            log,
		Metrics:           m,
		Audit:             auditPub,
	})
	rt.Register("authenticate", controller, http.MethodGet)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.DeviceMeta)
	mux.Use(middleware.Logger(log))
	mux.Use(middleware.Recovery(log))
	mux.Use(identity.SessionMiddleware(sessions, log, requestcontext.WithPrincipal))
	rt.Mount(mux)

	srv := httpserver.New(cfg.Addr, mux)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := httpserver.New(cfg.MetricsAddr, metricsMux)

	log.Info("starting openid-gateway", "addr", cfg.Addr, "metrics_addr", cfg.MetricsAddr)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func buildClientRegistry(ctx context.Context, cfg config.Server, log *slog.Logger) (clients.Registry, error) {
	pool, err := postgres.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		return clients.NewPostgresStore(pool), nil
	}
	store := clients.NewInMemoryStore()
	seeded, err := clients.SeedBootstrapClient(store)
	if err != nil {
		return nil, err
	}
	log.Info("using in-memory client registry", "bootstrap_client", seeded.ClientID)
	return store, nil
}

func buildDecisionStore(ctx context.Context, cfg config.Server) (consent.DecisionStore, error) {
	client, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if client != nil {
		return consent.NewRedisStore(client.Client, consent.DefaultGrantTTL), nil
	}
	return consent.NewInMemoryStore(), nil
}

func buildAuditSink(cfg config.Server, log *slog.Logger) (auditpublisher.Sink, error) {
	if len(cfg.KafkaBrokers) > 0 {
		return auditkafka.NewSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	log.Warn("no audit brokers configured, audit trail stays in process memory")
	return auditmemory.NewSink(), nil
}
