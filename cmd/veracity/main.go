package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"veracity/internal/cli"
	"veracity/internal/config"
	"veracity/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		logger.LogError(err, "Failed to apply Vault secrets")
		os.Exit(1)
	}

	logger.Debug("Starting veracity",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"classifier_enabled", cfg.Classifier.Enabled,
		"classifier_provider", cfg.Classifier.Provider)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Application execution failed")
		os.Exit(1)
	}
}
