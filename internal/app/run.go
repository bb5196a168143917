package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Serve runs the HTTP API until a shutdown signal.
func (a *App) Serve() error {
	a.logger.Info("application-starting",
		zap.String("mode", "serve"),
		zap.String("storage-backend", a.cfg.StorageBackend),
		zap.String("log-level", a.cfg.LogLevel))

	a.startHTTPServer()
	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready", zap.String("http-addr", ":"+a.cfg.HTTPPort))

	return a.waitForShutdown()
}

// Schedule runs the HTTP API and the analysis cycle on the configured cron
// schedule until a shutdown signal. With runNow the first cycle starts immediately.
func (a *App) Schedule(runNow bool) error {
	err := a.cfg.RequireOddsAPIKey()
	if err != nil {
		return err
	}

	a.logger.Info("application-starting",
		zap.String("mode", "schedule"),
		zap.String("schedule", a.cfg.Schedule),
		zap.String("storage-backend", a.cfg.StorageBackend),
		zap.String("log-level", a.cfg.LogLevel))

	id, err := a.runner.Add(a.cfg.Schedule, a.scheduledCycle)
	if err != nil {
		return fmt.Errorf("schedule cycle: %w", err)
	}

	a.startHTTPServer()
	a.runner.Start()
	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.Time("next-cycle", a.runner.Next(id)))

	if runNow {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.scheduledCycle(a.ctx)
		}()
	}

	return a.waitForShutdown()
}

// scheduledCycle drops the error, RunCycle has logged it and recorded it on the health probe.
func (a *App) scheduledCycle(ctx context.Context) {
	_, _ = a.RunCycle(ctx)
}

func (a *App) startHTTPServer() {
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
