package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"smartbin/internal/admin"
	adminhandler "smartbin/internal/admin/handler"
	"smartbin/internal/dustbin"
	identityhandler "smartbin/internal/identity/handler"
	"smartbin/internal/identity/secrets"
	identityservice "smartbin/internal/identity/service"
	idstore "smartbin/internal/identity/store"
	"smartbin/internal/ledger"
	"smartbin/internal/ledger/cooldown"
	ledgerhandler "smartbin/internal/ledger/handler"
	"smartbin/internal/platform/config"
	"smartbin/internal/platform/httpserver"
	platformkafka "smartbin/internal/platform/kafka"
	"smartbin/internal/platform/logger"
	"smartbin/internal/platform/metrics"
	"smartbin/internal/platform/observability"
	platformredis "smartbin/internal/platform/redis"
	"smartbin/internal/ranking"
	rankinghandler "smartbin/internal/ranking/handler"
	"smartbin/internal/session"
	httptransport "smartbin/internal/transport/http"
	audit "smartbin/pkg/platform/audit"
	"smartbin/pkg/platform/audit/publisher"
	kafkasink "smartbin/pkg/platform/audit/publishers/kafka"
	auditmemory "smartbin/pkg/platform/audit/store/memory"
	auditpostgres "smartbin/pkg/platform/audit/store/postgres"
)

const (
	sessionIssuer   = "smartbin"
	auditBufferSize = 1024
	shutdownTimeout = 10 * time.Second
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := metrics.New()

	sinks, reader, closeSinks, err := buildAuditSinks(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()
	auditPublisher := publisher.NewPublisher(
		observability.NewMeteredStore(sinks, m),
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	index, closeIndex, err := buildCooldownIndex(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	store := idstore.New()
	sessions := session.NewManager(cfg.JWTSigningKey, sessionIssuer, session.WithTTL(cfg.SessionTTL))

	identities, err := identityservice.New(store, secrets.NewHasher(bcrypt.DefaultCost), sessions,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(auditPublisher),
		identityservice.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("identity service: %w", err)
	}
	if _, err := identities.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	catalog, err := dustbin.NewCatalog(dustbin.Defaults...)
	if err != nil {
		return fmt.Errorf("dustbin catalog: %w", err)
	}

	ledgerSvc, err := ledger.New(store, index, catalog,
		ledger.WithLogger(log),
		ledger.WithAuditPublisher(auditPublisher),
		ledger.WithMetrics(m),
		ledger.WithConfig(ledger.Config{
			Cooldown:     cfg.Ledger.Cooldown,
			Award:        cfg.Ledger.Award,
			HistoryLimit: cfg.Ledger.HistoryLimit,
		}),
	)
	if err != nil {
		return fmt.Errorf("ledger service: %w", err)
	}

	view := ranking.NewView(store)
	adminSvc, err := admin.New(store, ledgerSvc, catalog, view,
		admin.WithLogger(log),
		admin.WithAuditPublisher(auditPublisher),
		admin.WithAuditReader(reader),
		admin.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("admin service: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Verifier:       session.NewMiddlewareAdapter(sessions),
		Metrics:        m.Handler(),
		AllowedOrigins: cfg.AllowedOrigins,
		Identity: identityhandler.New(identities, log, identityhandler.CookieConfig{
			MaxAge: cfg.SessionTTL,
			Secure: cfg.SecureCookies,
		}),
		Ledger:      ledgerhandler.New(ledgerSvc, log),
		Leaderboard: rankinghandler.New(view, log),
		Admin:       adminhandler.New(adminSvc, log),
	})
	srv := httpserver.New(cfg.Addr, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting smartbin", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildAuditSinks picks Postgres over memory for the readable trail and adds
// Kafka when brokers are configured.
func buildAuditSinks(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Fanout, admin.AuditReader, func(), error) {
	var (
		sinks   audit.Fanout
		reader  admin.AuditReader
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Postgres.URL != "" {
		pg, err := auditpostgres.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		closers = append(closers, func() { _ = pg.Close() })
		sinks = append(sinks, pg)
		reader = pg
		log.Info("audit trail stored in postgres")
	} else {
		mem := auditmemory.NewInMemoryStore()
		sinks = append(sinks, mem)
		reader = mem
	}

	client, err := platformkafka.New(ctx, cfg.Kafka)
	if err != nil {
		closeAll()
		return nil, nil, nil, err
	}
	if client != nil {
		closers = append(closers, client.Close)
		sinks = append(sinks, kafkasink.NewSink(client, cfg.Kafka.AuditTopic))
		log.Info("audit events streamed to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	return sinks, reader, closeAll, nil
}

// buildCooldownIndex uses Redis when configured so cooldowns survive restarts.
func buildCooldownIndex(ctx context.Context, cfg config.Server) (ledger.CooldownIndex, func(), error) {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return cooldown.NewInMemoryIndex(), func() {}, nil
	}
	return cooldown.NewRedisIndex(client.UniversalClient, cfg.Ledger.Cooldown), func() { _ = client.Close() }, nil
}
