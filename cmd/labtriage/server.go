package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clinsight/labtriage/api/handlers"
	"github.com/clinsight/labtriage/config"
	"github.com/clinsight/labtriage/extract"
	"github.com/clinsight/labtriage/gateway"
	"github.com/clinsight/labtriage/internal/metrics"
	"github.com/clinsight/labtriage/llm/local"
	"github.com/clinsight/labtriage/llm/tools"
)

// Server wires the triage pipeline behind an HTTP listener with graceful
// shutdown.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	http   *http.Server
}

// NewServer assembles the full pipeline: local provider -> extraction tool ->
// registry -> gateway -> handlers.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector("labtriage", registry)

	provider := local.New(local.Config{
		BaseURL:     cfg.Local.BaseURL,
		Model:       cfg.Local.Model,
		MaxTokens:   cfg.Local.MaxTokens,
		Temperature: cfg.Local.Temperature,
		Timeout:     cfg.Local.Timeout,
	}, logger.Named("local"))

	tool := extract.NewTool(provider, logger.Named("extract"))
	toolRegistry := tools.NewRegistry(logger.Named("tools"))

	gw, err := gateway.New(toolRegistry, tool, collector, logger.Named("gateway"))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/triage", handlers.NewTriageHandler(gw, logger.Named("api")).Handle)
	mux.HandleFunc("/healthz", handlers.NewHealthHandler(provider, logger.Named("api")).Handle)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Server{
		cfg:    cfg,
		logger: logger,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			Handler:      mux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains within the shutdown timeout.
func (s *Server) Run() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("labtriage listening",
			zap.String("addr", s.http.Addr),
			zap.String("local_endpoint", s.cfg.Local.BaseURL),
			zap.String("model", s.cfg.Local.Model))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
