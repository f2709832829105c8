package server

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const shutdownTimeout = 30 * time.Second

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}

	vaultClient, err := s.initializeVaultClient()
	if err != nil {
		return err
	}
	if err := s.configureTLS(httpServer, vaultClient); err != nil {
		return err
	}

	s.displayServerInfo()

	return s.serveUntilDone(ctx, httpServer)
}

// serveUntilDone runs the listener and waits for ctx or a listener error
func (s *Server) serveUntilDone(ctx context.Context, server *http.Server) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// certificates are already in the TLS config
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.cleanup()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Shutdown requested, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown drains in-flight requests before closing
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	defer s.cleanup()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanup stops certificate watchers and the rate limiter
func (s *Server) cleanup() {
	if s.CertificateManager != nil {
		if err := s.CertificateManager.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate manager")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}
}
