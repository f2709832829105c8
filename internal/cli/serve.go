package cli

import (
	"context"
	"fmt"
	"time"

	"veracity/internal/config"
	"veracity/internal/engine"
	"veracity/internal/observability"
	"veracity/internal/server"

	"github.com/spf13/cobra"
)

const observabilityShutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for résumé and job posting analysis",
	Long: `Start an HTTP server that exposes the analysis engine over REST.

Available endpoints:
- POST /analyze-resume: Analyze résumé text
- POST /analyze-job: Analyze a job posting from text, URL or extracted content
- GET /health: Classifier and certificate health (always 200)
- GET /stats: Rate limiting and circuit breaker statistics

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

var serveFlags struct {
	port, host                         string
	tlsMode, certFile, keyFile, caFile string
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.tlsMode, "tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.caFile, "ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

// applyServeOverrides copies flags the user set onto the loaded configuration
func applyServeOverrides(cmd *cobra.Command, cfg *config.ServerConfig) {
	overrides := []struct {
		flag   string
		value  string
		target *string
	}{
		{"port", serveFlags.port, &cfg.Port},
		{"host", serveFlags.host, &cfg.Host},
		{"tls-mode", serveFlags.tlsMode, &cfg.TLS.Mode},
		{"cert-file", serveFlags.certFile, &cfg.TLS.CertFile},
		{"key-file", serveFlags.keyFile, &cfg.TLS.KeyFile},
		{"ca-file", serveFlags.caFile, &cfg.TLS.CAFile},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.target = o.value
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	applyServeOverrides(cmd, &cfg.Server)
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), observabilityShutdownTimeout)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	eng, err := engine.New(ctx, cfg, logger, engine.WithMetrics(om.GetMetrics()))
	if err != nil {
		return fmt.Errorf("failed to create analysis engine: %w", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Warn("Failed to close analysis engine", "error", err)
		}
	}()

	srv := server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), eng, om, logger)
	return srv.Start(ctx)
}
