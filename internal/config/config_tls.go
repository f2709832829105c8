package config

import "fmt"

// TLS modes accepted by the server
const (
	TLSModeDisabled = "disabled"
	TLSModeServer   = "server"
	TLSModeMutual   = "mutual"
)

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	var checks []func(TLSConfig) error
	switch tls.Mode {
	case TLSModeDisabled:
		return nil
	case TLSModeServer:
		checks = []func(TLSConfig) error{requireCertAndKey(tls.Mode), rejectDuplicateCertSources}
	case TLSModeMutual:
		checks = []func(TLSConfig) error{
			requireCertAndKey(tls.Mode),
			requireCA,
			rejectDuplicateCertSources,
			rejectDuplicateCASource,
			validateClientAuthPolicy,
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}
	checks = append(checks, validateTLSVersion)

	for _, check := range checks {
		if err := check(tls); err != nil {
			return err
		}
	}
	return nil
}

// requireCertAndKey checks that a certificate and key are available from a file or content
func requireCertAndKey(mode string) func(TLSConfig) error {
	return func(tls TLSConfig) error {
		if (tls.CertFile == "" && tls.CertContent == "") || (tls.KeyFile == "" && tls.KeyContent == "") {
			return fmt.Errorf("TLS certificate and key are required for %s mode (provide either files or content)", mode)
		}
		return nil
	}
}

func requireCA(tls TLSConfig) error {
	if tls.CAFile == "" && tls.CAContent == "" {
		return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
	}
	return nil
}

func rejectDuplicateCertSources(tls TLSConfig) error {
	if tls.CertFile != "" && tls.CertContent != "" {
		return fmt.Errorf("cannot specify both certFile and certContent - choose one")
	}
	if tls.KeyFile != "" && tls.KeyContent != "" {
		return fmt.Errorf("cannot specify both keyFile and keyContent - choose one")
	}
	return nil
}

func rejectDuplicateCASource(tls TLSConfig) error {
	if tls.CAFile != "" && tls.CAContent != "" {
		return fmt.Errorf("cannot specify both caFile and caContent - choose one")
	}
	return nil
}

// validateClientAuthPolicy accepts an empty policy, which defaults to require
func validateClientAuthPolicy(tls TLSConfig) error {
	switch tls.ClientAuthPolicy {
	case "require", "request", "verify", "":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", tls.ClientAuthPolicy)
	}
}

func validateTLSVersion(tls TLSConfig) error {
	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}
}
