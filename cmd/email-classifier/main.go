// cmd/email-classifier/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"email-classifier/internal/classifier"
	"email-classifier/internal/classifier/provider"
	"email-classifier/internal/common/config"
	commonhttp "email-classifier/internal/common/http"
	"email-classifier/internal/common/logger"
	"email-classifier/internal/common/observability"
	"email-classifier/internal/server"
)

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		// Without an API key the service cannot answer anything; refuse to start.
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, zapLog)
	stop()

	if err != nil {
		zapLog.Error("email classifier stopped with error", zap.Error(err))
		_ = zapLog.Sync()
		os.Exit(1)
	}
	_ = zapLog.Sync()
}

// run wires the service and serves until ctx is cancelled. Every resource it
// opens is released before it returns.
func run(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) error {
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":         cfg.App.Name,
		"environment": cfg.App.Environment,
	})

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	httpClient := commonhttp.NewClient(config.GetDuration(cfg.GenAI.Timeout))

	model, err := provider.New(ctx, cfg.GenAI, httpClient)
	if err != nil {
		return fmt.Errorf("genai provider init failed: %w", err)
	}

	clf, err := classifier.New(classifier.Options{
		Model:         model,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		return fmt.Errorf("classifier init failed: %w", err)
	}

	srv, err := server.New(server.Options{
		Config:     cfg,
		Logger:     log,
		Classifier: clf,
	})
	if err != nil {
		return fmt.Errorf("server init failed: %w", err)
	}

	log.Info("starting email classifier", map[string]interface{}{
		"provider": model.Name(),
		"model":    cfg.GenAI.Model,
		"addr":     cfg.Server.Addr(),
	})

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	log.Info("email classifier stopped gracefully", nil)
	return nil
}
