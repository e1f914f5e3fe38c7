package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TradePulse/internal/domain/repository"
	"TradePulse/internal/handler/api"
	mid "TradePulse/internal/middleware"
	"TradePulse/internal/usecase"
	"TradePulse/pkg/config"
	xhttp "TradePulse/pkg/http"
	applogger "TradePulse/pkg/logger"
)

// App encapsulates the entire application lifecycle: the periodic refresh
// loop, the optional live tick stream, and the HTTP API.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	refresh  *usecase.RefreshUseCase
	stream   repository.PriceStream
	pipeline *mid.TickPipeline
	handler  *api.DashboardHandler
	archive  repository.CandleArchive
	events   repository.TradeEventPublisher

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	refresh *usecase.RefreshUseCase,
	stream repository.PriceStream,
	pipeline *mid.TickPipeline,
	handler *api.DashboardHandler,
	archive repository.CandleArchive,
	events repository.TradeEventPublisher,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		refresh:  refresh,
		stream:   stream,
		pipeline: pipeline,
		handler:  handler,
		archive:  archive,
		events:   events,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.log, time.Second),
	)

	// Refresh loop: one cycle now so the first HTTP request is served from
	// a warm snapshot, then on the configured interval.
	go a.refreshLoop(ctx)
	a.log.Info("refresh loop started",
		applogger.String("symbol", a.cfg.Market.Symbol),
		applogger.Duration("interval", a.cfg.Market.UpdateInterval))

	// Live ticks: stream -> pipeline -> engine
	if a.stream != nil {
		a.pipeline.Start(ctx)
		go a.streamLoop(ctx)
		a.log.Info("price stream started", applogger.String("symbol", a.cfg.Market.Symbol))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// refreshLoop runs engine cycles on the update interval until the context is
// cancelled. A failed cycle is logged and retried on the next tick.
func (a *App) refreshLoop(ctx context.Context) {
	run := func() {
		cycleCtx, cancel := context.WithTimeout(ctx, a.cfg.Market.UpdateInterval)
		defer cancel()
		if _, err := a.refresh.Refresh(cycleCtx); err != nil {
			a.log.Error("refresh cycle failed", applogger.Error(err))
		}
	}

	run()
	ticker := time.NewTicker(a.cfg.Market.UpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// streamLoop connects the WebSocket stream and forwards ticks through the
// pipeline, reconnecting with the configured delay on any failure.
func (a *App) streamLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := a.connectAndConsume(ctx); err != nil {
			a.log.Warn("price stream disconnected", applogger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.cfg.Stream.ReconnectDelay):
		}
	}
}

func (a *App) connectAndConsume(ctx context.Context) error {
	if err := a.stream.Connect(ctx); err != nil {
		return err
	}
	if err := a.stream.Subscribe(ctx); err != nil {
		_ = a.stream.Close()
		return err
	}

	ticks, errs := a.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return a.stream.Close()
		case err := <-errs:
			_ = a.stream.Close()
			return err
		case t, ok := <-ticks:
			if !ok {
				return a.stream.Close()
			}
			if err := a.pipeline.Process(ctx, t); err != nil {
				a.log.Warn("tick dropped", applogger.Error(err))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	if a.stream != nil {
		a.pipeline.Stop()
		if err := a.stream.Close(); err != nil {
			a.log.Warn("stream close error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.log.Warn("archive close error", applogger.Error(err))
		}
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("event publisher close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
