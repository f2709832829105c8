package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name     string
		tls      TLSConfig
		errorMsg string
	}{
		{
			name: "disabled mode ignores everything else",
			tls:  TLSConfig{Mode: "disabled", MinVersion: "1.0"},
		},
		{
			name: "server mode with files",
			tls:  TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem", KeyFile: "/path/to/key.pem", MinVersion: "1.2"},
		},
		{
			name: "server mode with vault content",
			tls:  TLSConfig{Mode: "server", CertContent: "cert-content", KeyContent: "key-content"},
		},
		{
			name: "mutual mode complete",
			tls: TLSConfig{
				Mode:             "mutual",
				CertContent:      "cert-content",
				KeyContent:       "key-content",
				CAContent:        "ca-content",
				ClientAuthPolicy: "require",
				MinVersion:       "1.3",
			},
		},
		{
			name: "mutual mode with empty policy",
			tls:  TLSConfig{Mode: "mutual", CertFile: "c.pem", KeyFile: "k.pem", CAFile: "ca.pem"},
		},
		{
			name:     "invalid mode",
			tls:      TLSConfig{Mode: "invalid", CertFile: "c.pem", KeyFile: "k.pem"},
			errorMsg: "invalid TLS mode: invalid",
		},
		{
			name:     "server mode missing key",
			tls:      TLSConfig{Mode: "server", CertFile: "c.pem"},
			errorMsg: "TLS certificate and key are required for server mode",
		},
		{
			name:     "server mode duplicate certificate source",
			tls:      TLSConfig{Mode: "server", CertFile: "c.pem", CertContent: "cert", KeyFile: "k.pem"},
			errorMsg: "cannot specify both certFile and certContent",
		},
		{
			name:     "server mode duplicate key source",
			tls:      TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", KeyContent: "key"},
			errorMsg: "cannot specify both keyFile and keyContent",
		},
		{
			name:     "mutual mode missing CA",
			tls:      TLSConfig{Mode: "mutual", CertFile: "c.pem", KeyFile: "k.pem"},
			errorMsg: "CA certificate is required for mutual TLS mode",
		},
		{
			name:     "mutual mode duplicate CA source",
			tls:      TLSConfig{Mode: "mutual", CertFile: "c.pem", KeyFile: "k.pem", CAFile: "ca.pem", CAContent: "ca"},
			errorMsg: "cannot specify both caFile and caContent",
		},
		{
			name:     "mutual mode bad policy",
			tls:      TLSConfig{Mode: "mutual", CertFile: "c.pem", KeyFile: "k.pem", CAFile: "ca.pem", ClientAuthPolicy: "optional"},
			errorMsg: "invalid clientAuthPolicy: optional",
		},
		{
			name:     "server mode old TLS version",
			tls:      TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.0"},
			errorMsg: "invalid TLS minVersion: 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{Server: ServerConfig{TLS: tt.tls}}
			err := c.ValidateTLSConfig()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestValidateClientAuthPolicy(t *testing.T) {
	for _, policy := range []string{"", "require", "request", "verify"} {
		assert.NoError(t, validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: policy}), policy)
	}
	assert.Error(t, validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: "none"}))
}

func TestApplyTLSDefaults(t *testing.T) {
	c := &Config{Server: ServerConfig{TLS: TLSConfig{Mode: "mutual"}}}
	c.applyTLSDefaults()
	assert.Equal(t, "require", c.Server.TLS.ClientAuthPolicy)
	assert.Equal(t, "1.2", c.Server.TLS.MinVersion)

	c = &Config{Server: ServerConfig{TLS: TLSConfig{Mode: "disabled"}}}
	c.applyTLSDefaults()
	assert.Empty(t, c.Server.TLS.MinVersion)
}
