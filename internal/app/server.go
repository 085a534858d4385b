package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kursadbilgin/domain-alerts/internal/handler"
	"github.com/kursadbilgin/domain-alerts/internal/service"
	"github.com/kursadbilgin/domain-alerts/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// NewHTTPServer mounts probes, metrics and the run API.
func (a *App) NewHTTPServer(runs handler.RunController) (*fiber.App, error) {
	server := fiber.New(fiber.Config{
		AppName:               "domain-alerts",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(a.logger),
	})
	server.Use(recover.New())
	server.Use(a.metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(server, a.sqlDB, a.redis)
	server.Get("/metrics", adaptor.HTTPHandler(a.metrics.Handler()))

	if err := handler.RegisterRunRoutes(server, runs, a.domains, a.ledger); err != nil {
		return nil, err
	}
	return server, nil
}

// Serve runs scheduled batches, ledger retention and the HTTP API until ctx
// is cancelled.
func (a *App) Serve(ctx context.Context) error {
	scheduler, err := service.NewScheduler(a, a.cfg.RunInterval, a.logger)
	if err != nil {
		return err
	}
	janitor, err := a.NewLedgerJanitor(0)
	if err != nil {
		return err
	}
	server, err := a.NewHTTPServer(scheduler)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Start(gctx)
	})
	g.Go(func() error {
		return janitor.Start(gctx)
	})
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", a.cfg.APIPort)
		a.logger.Info("domain-alerts api started", zap.String("addr", addr))
		if err := server.Listen(addr); err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return server.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
