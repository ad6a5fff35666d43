// Package application wires the proxy together and runs its long-lived parts
// until the context is cancelled.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"wfm_flipper/internal/config"
	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/internal/domain/service/session"
	"wfm_flipper/internal/domain/service/trading"
	"wfm_flipper/internal/infrastructure/market"
	"wfm_flipper/internal/infrastructure/metadata"
	"wfm_flipper/internal/infrastructure/notifier"
	"wfm_flipper/internal/infrastructure/ratelimit"
	"wfm_flipper/internal/metrics"
	"wfm_flipper/internal/server"
	"wfm_flipper/internal/transport/bot"
	"wfm_flipper/internal/transport/bot/handler"
	"wfm_flipper/internal/worker"
	"wfm_flipper/pkg/application/modules"
	"wfm_flipper/pkg/contextx"
	"wfm_flipper/pkg/httpx"
	"wfm_flipper/pkg/logx"
	"wfm_flipper/pkg/middlewarex"
)

const reportsBuffer = 16

func Run(ctx context.Context, cfg config.Config) error {
	log := contextx.LoggerFromContextOrDefault(ctx).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)
	ctx = contextx.WithLogger(ctx, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	limiter := ratelimit.New(
		cfg.Limiter.RequestsPerSecond,
		cfg.Limiter.MaxConcurrent,
		ratelimit.WithWindow(cfg.Limiter.Window),
		ratelimit.WithCooldown(cfg.Limiter.Cooldown),
	)
	appMetrics := metrics.New(registry, limiter)

	masker := logx.NewSensitiveDataMasker()
	transport := httpx.NewLoggingRoundTripper(
		http.DefaultTransport,
		httpx.WithSensitiveDataMasker(masker),
		httpx.WithLogFieldMaxLen(cfg.HTTP.LogFieldMaxLen),
	)

	authSession := session.New(market.NewAuthAPI(cfg.Market, transport), cfg.Session.TTL)
	client := market.NewClient(cfg.Market, limiter, authSession, appMetrics, transport)
	tradingService := trading.NewService(client, metadata.NewStore())
	engine := worker.NewEngine(client, limiter, appMetrics, cfg.Jobs)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Bot.Enabled() {
		if err := runBots(ctx, g, cfg.Bot, engine, limiter, authSession); err != nil {
			return err
		}
	} else {
		log.Info("telegram notifier disabled")
	}

	srv := server.NewServer(
		server.NewAnalysisServer(engine),
		server.NewAuthServer(authSession),
		server.NewTradingServer(tradingService),
		server.NewProxyServer(client, limiter),
	)

	r := chi.NewRouter()
	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger(log),
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.CORS(cfg.HTTP.CORSAllowOrigin),
		middlewarex.NewClientRateLimiter(cfg.HTTP.InboundRPS, cfg.HTTP.InboundBurst).Middleware,
	)
	srv.RegisterRoutes(r)

	var stopping atomic.Bool

	modules.HTTPServer{
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		OnShutdown: func() {
			stopping.Store(true)

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
			defer cancel()

			if err := engine.Shutdown(shutdownCtx); err != nil {
				log.Error("engine.Shutdown", logx.Error(err))
			}
		},
	}.Run(ctx, g, &http.Server{ //nolint:gosec
		Addr:    cfg.HTTP.ListenAddress,
		Handler: r,
	})

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
		Ready:         func() bool { return !stopping.Load() },
	}.Run(ctx, g)

	modules.MetricServer{
		ListenAddress: cfg.HTTP.MetricsListenAddress,
		Gatherer:      registry,
	}.Run(ctx, g)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}

// runBots starts the report notifier and, when an admin is configured, the
// command bot that shares its telego client.
func runBots(
	ctx context.Context,
	g *errgroup.Group,
	cfg config.Bot,
	engine *worker.Engine,
	limiter *ratelimit.Limiter,
	authSession *session.Session,
) error {
	alertBot, err := notifier.NewTelegramBot(cfg)
	if err != nil {
		return fmt.Errorf("notifier.NewTelegramBot: %w", err)
	}

	reports := make(chan entity.Job, reportsBuffer)
	engine.WithReports(reports)

	g.Go(func() error {
		if err := alertBot.Run(ctx, reports); err != nil && ctx.Err() == nil {
			return fmt.Errorf("alertBot.Run: %w", err)
		}

		return nil
	})

	if !cfg.CommandsEnabled() {
		return nil
	}

	adminBot := bot.New(alertBot.Bot(), handler.New(limiter, authSession, engine), cfg.AdminID)

	g.Go(func() error {
		if err := adminBot.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("adminBot.Run: %w", err)
		}

		return nil
	})

	return nil
}
