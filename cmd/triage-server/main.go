package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/adapters/httpapi"
	"github.com/mikey/mail-triage/internal/adapters/smtpfilter"
	"github.com/mikey/mail-triage/internal/config"
	"github.com/mikey/mail-triage/internal/core"
	"github.com/mikey/mail-triage/internal/di"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	apiServer *httpapi.Server,
	smtpFilter *smtpfilter.Filter,
	summarizer core.Summarizer,
	replies core.ReplyGenerator,
) error {
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the HTTP API
	errCh := make(chan error, 1)
	go func() {
		if err := apiServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Start the SMTP content filter when enabled
	smtpEnabled := cfg.GetSMTP().Enabled
	if smtpEnabled {
		if err := smtpFilter.Start(); err != nil {
			logger.Fatal("Failed to start SMTP filter", zap.Error(err))
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down...", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("HTTP API server failed", zap.Error(err))
	}
	cancel()

	if smtpEnabled {
		if err := smtpFilter.Stop(); err != nil {
			logger.Error("Failed to stop SMTP filter", zap.Error(err))
		}
	}

	// Close any resources that need closing
	if closer, ok := summarizer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close summarizer", zap.Error(err))
		}
	}
	if closer, ok := replies.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close reply generator", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
