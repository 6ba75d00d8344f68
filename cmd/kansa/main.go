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

	"github.com/joho/godotenv"

	"github.com/agentics-ai/kansa/internal/config"
	"github.com/agentics-ai/kansa/internal/emitter"
	"github.com/agentics-ai/kansa/internal/health"
	"github.com/agentics-ai/kansa/internal/schema"
	"github.com/agentics-ai/kansa/internal/server"
	sigpkg "github.com/agentics-ai/kansa/internal/signal"
	"github.com/agentics-ai/kansa/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("KANSA_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("kansa starting", "version", version, "port", cfg.Port)

	// Initialize OpenTelemetry.
	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// Signal delivery. Without a collector URL signals are still produced
	// but delivery is a logged no-op.
	var sink emitter.Sink
	if cfg.CollectorURL != "" {
		sink = emitter.NewCollector(cfg.CollectorURL, cfg.CollectorAPIKey)
		logger.Info("signal collector: enabled", "url", cfg.CollectorURL)
	} else {
		sink = discardSink{logger: logger}
		logger.Info("signal collector: disabled (no KANSA_COLLECTOR_URL)")
	}
	em := emitter.New(sink, logger, cfg.SignalQueueSize)
	em.Start(ctx)

	// Evaluation engines.
	schemaEngine := schema.NewEngine(logger, cfg.LatencyBudget)
	healthEngine := health.NewEngine(logger, cfg.LatencyBudget)

	srv := server.New(server.ServerConfig{
		SchemaEngine:        schemaEngine,
		HealthEngine:        healthEngine,
		Emitter:             em,
		Logger:              logger,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		CheckTimeout:        cfg.CheckTimeout,
	})

	// Start HTTP server in background.
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	// Graceful shutdown. Each phase gets its own timeout so early completion
	// doesn't steal budget from later phases. Order: (1) stop accepting new
	// HTTP requests and drain in-flight (they may still enqueue signals),
	// (2) drain the signal queue to the collector.
	slog.Info("kansa shutting down")

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := srv.Shutdown(httpCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	httpCancel()

	emCtx, emCancel := context.WithTimeout(context.Background(), 10*time.Second)
	em.Drain(emCtx)
	emCancel()

	slog.Info("kansa stopped")
	return nil
}

// discardSink stands in for the collector when none is configured. Signals
// are summarized at debug level and dropped.
type discardSink struct {
	logger *slog.Logger
}

func (d discardSink) Emit(_ context.Context, sig sigpkg.Signal) error {
	d.logger.Debug("signal discarded", "summary", sig.Summary())
	return nil
}

func (d discardSink) EmitBatch(_ context.Context, batch sigpkg.Batch) error {
	d.logger.Debug("signal batch discarded", "batch_id", batch.BatchID, "signals", len(batch.Signals))
	return nil
}
