package server

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"veracity/internal/config"
)

// configureTLS sets up TLS on httpServer according to the configured mode
func (s *Server) configureTLS(httpServer *http.Server, vaultClient SecretReader) error {
	addr := httpServer.Addr

	switch s.TLSConfig.Mode {
	case "", "disabled":
		fmt.Fprintf(s.out(), "Starting server on http://%s\n", addr)
		fmt.Fprintln(s.out(), "TLS mode: Disabled (HTTP only)")
		return nil
	case "server":
		fmt.Fprintf(s.out(), "Starting server with HTTPS (server-only TLS) on https://%s\n", addr)
		fmt.Fprintln(s.out(), "TLS mode: Server-only (no client certificates required)")
	case "mutual":
		fmt.Fprintf(s.out(), "Starting server with mTLS (mutual TLS) on https://%s\n", addr)
		fmt.Fprintln(s.out(), "TLS mode: Mutual (client certificates required)")
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	if err := s.setupCertificateManager(vaultClient); err != nil {
		return err
	}
	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	httpServer.TLSConfig = tlsConfig
	return nil
}

// setupCertificateManager starts certificate auto-reload when enabled
func (s *Server) setupCertificateManager(vaultClient SecretReader) error {
	if !s.TLSConfig.AutoReload.Enabled {
		return nil
	}

	certManager := NewCertificateManager(&s.TLSConfig, vaultClient, s.Observability.GetMetrics(), s.Logger)
	certManager.AddReloadCallback(func(success bool, err error) {
		if success {
			s.Logger.Info("TLS certificates reloaded successfully")
		}
	})
	if err := certManager.Start(); err != nil {
		return fmt.Errorf("failed to start certificate manager: %w", err)
	}
	s.CertificateManager = certManager

	fmt.Fprintln(s.out(), "TLS auto-reload: ENABLED")
	if s.TLSConfig.AutoReload.FileWatcher.Enabled {
		fmt.Fprintln(s.out(), "  - File watching enabled")
	}
	if s.TLSConfig.AutoReload.VaultWatcher.Enabled {
		fmt.Fprintln(s.out(), "  - Vault watching enabled")
	}
	return nil
}

// initializeVaultClient creates a Vault client when certificates are watched in Vault
func (s *Server) initializeVaultClient() (SecretReader, error) {
	if !s.TLSConfig.AutoReload.VaultWatcher.Enabled {
		return nil, nil
	}

	vc, err := config.NewVaultClient(s.AppConfig.Vault, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Vault client: %w", err)
	}
	if vc == nil {
		return nil, nil
	}
	return vc, nil
}

// buildTLSConfig creates the TLS configuration
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:   tlsVersion(s.TLSConfig.MinVersion),
		CipherSuites: cipherSuiteIDs(s.TLSConfig.CipherSuites),
		ServerName:   s.TLSConfig.ServerName,
		ClientAuth:   tls.NoClientCert,
	}

	if s.CertificateManager != nil {
		tlsConfig.GetCertificate = s.CertificateManager.GetServerCertificate
	} else {
		cert, _, err := loadKeyPair(s.TLSConfig)
		if err != nil {
			return nil, err
		}
		if cert == nil {
			return nil, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
		}
		tlsConfig.Certificates = []tls.Certificate{*cert}
	}

	if s.TLSConfig.Mode == "mutual" {
		pool, err := loadCAPool(s.TLSConfig)
		if err != nil {
			return nil, err
		}
		if pool == nil {
			return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = clientAuthPolicy(s.TLSConfig.ClientAuthPolicy)
		if s.CertificateManager != nil {
			tlsConfig.VerifyPeerCertificate = s.CertificateManager.VerifyPeerCertificate
		}
	}

	if s.TLSConfig.InsecureSkipVerify {
		tlsConfig.InsecureSkipVerify = true
		fmt.Fprintln(s.out(), "WARNING: TLS certificate verification is disabled (insecureSkipVerify=true)")
	}

	return tlsConfig, nil
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}

// cipherSuiteIDs maps configured suite names to IDs, skipping unknown names.
// A nil result leaves Go's defaults in place.
func cipherSuiteIDs(names []string) []uint16 {
	if len(names) == 0 {
		return nil
	}
	known := make(map[string]uint16)
	for _, suite := range tls.CipherSuites() {
		known[suite.Name] = suite.ID
	}

	ids := make([]uint16, 0, len(names))
	for _, name := range names {
		if id, ok := known[name]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
