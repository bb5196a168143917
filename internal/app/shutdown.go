package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Cancel context to signal all components
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop scheduling, waiting for a running cycle
	a.runner.Stop()

	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Wait for all goroutines
	a.wg.Wait()

	a.closeResources()

	a.logger.Info("application-shutdown-complete")

	return nil
}

// Close releases stores without the server lifecycle, for one-shot commands.
func (a *App) Close() error {
	a.cancel()
	a.closeResources()
	return nil
}

func (a *App) closeResources() {
	a.closeOnce.Do(a.releaseResources)
}

func (a *App) releaseResources() {
	if a.sink != nil {
		err := a.sink.Close()
		if err != nil {
			a.logger.Error("storage-close-error", zap.Error(err))
		}
	}

	if a.store != nil {
		err := a.store.Close()
		if err != nil {
			a.logger.Error("snapshot-store-close-error", zap.Error(err))
		}
	}

	if a.snapshotCache != nil {
		a.snapshotCache.Close()
	}
}
