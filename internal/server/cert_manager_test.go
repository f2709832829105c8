package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"veracity/internal/config"
)

// selfSigned returns PEM cert and key valid for validFor
func selfSigned(t *testing.T, cn string, validFor time.Duration) (string, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(validFor),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("Failed to marshal key: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return string(certPEM), string(keyPEM)
}

func TestCertificateManagerLoadsFromFiles(t *testing.T) {
	dir := t.TempDir()
	certPEM, keyPEM := selfSigned(t, "veracity.test", 48*time.Hour)
	certFile, keyFile := filepath.Join(dir, "tls.crt"), filepath.Join(dir, "tls.key")
	if err := os.WriteFile(certFile, []byte(certPEM), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, []byte(keyPEM), 0600); err != nil {
		t.Fatal(err)
	}

	tlsCfg := &config.TLSConfig{Mode: "server", CertFile: certFile, KeyFile: keyFile}
	cm := NewCertificateManager(tlsCfg, nil, nil, nil)
	if err := cm.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = cm.Stop() }()

	cert, err := cm.GetServerCertificate(&tls.ClientHelloInfo{ServerName: "veracity.test"})
	if err != nil || cert == nil {
		t.Fatalf("Expected a server certificate, got %v", err)
	}
	remaining, err := cm.CheckExpiry()
	if err != nil {
		t.Fatalf("CheckExpiry failed: %v", err)
	}
	if remaining < 47*time.Hour || remaining > 48*time.Hour {
		t.Errorf("Unexpected time to expiry %v", remaining)
	}
	if m := cm.GetMetrics(); m.ReloadSuccessCount != 1 || !m.LastReloadSuccess {
		t.Errorf("Unexpected reload metrics %+v", m)
	}
}

func TestCertificateManagerVaultRotation(t *testing.T) {
	oldCert, oldKey := selfSigned(t, "old", 24*time.Hour)
	newCert, newKey := selfSigned(t, "new", 72*time.Hour)

	tlsCfg := &config.TLSConfig{Mode: "server", CertContent: oldCert, KeyContent: oldKey}
	cm := NewCertificateManager(tlsCfg, nil, nil, nil)
	if err := cm.ReloadCertificates(); err != nil {
		t.Fatalf("Initial load failed: %v", err)
	}

	cm.applyVaultCertificates(&CertificateData{CertContent: newCert, KeyContent: newKey}, nil)

	cert, err := cm.GetServerCertificate(&tls.ClientHelloInfo{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cert.Leaf == nil || cert.Leaf.Subject.CommonName != "new" {
		t.Errorf("Expected rotated certificate, got %+v", cert.Leaf)
	}

	cm.applyVaultCertificates(&CertificateData{CertContent: "garbage"}, nil)
	m := cm.GetMetrics()
	if m.ReloadFailureCount != 1 || m.LastReloadSuccess || m.LastReloadError == "" {
		t.Errorf("Expected a recorded failure, got %+v", m)
	}
	if cert, _ := cm.GetServerCertificate(&tls.ClientHelloInfo{}); cert.Leaf.Subject.CommonName != "new" {
		t.Error("A failed reload must keep the previous certificate")
	}
}

func TestGetServerCertificateRejectsExpired(t *testing.T) {
	certPEM, keyPEM := selfSigned(t, "expired", -time.Minute)
	cm := NewCertificateManager(&config.TLSConfig{Mode: "server", CertContent: certPEM, KeyContent: keyPEM}, nil, nil, nil)
	if err := cm.ReloadCertificates(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := cm.GetServerCertificate(&tls.ClientHelloInfo{}); err == nil {
		t.Error("Expected error for an expired certificate")
	}
}

func TestBuildTLSConfig(t *testing.T) {
	certPEM, keyPEM := selfSigned(t, "veracity.test", time.Hour)

	tests := []struct {
		name     string
		tls      config.TLSConfig
		wantErr  bool
		wantAuth tls.ClientAuthType
		wantMin  uint16
	}{
		{"server", config.TLSConfig{Mode: "server", CertContent: certPEM, KeyContent: keyPEM, MinVersion: "1.3"}, false, tls.NoClientCert, tls.VersionTLS13},
		{"mutual", config.TLSConfig{Mode: "mutual", CertContent: certPEM, KeyContent: keyPEM, CAContent: certPEM, ClientAuthPolicy: "verify"}, false, tls.VerifyClientCertIfGiven, tls.VersionTLS12},
		{"mutual without ca", config.TLSConfig{Mode: "mutual", CertContent: certPEM, KeyContent: keyPEM}, true, 0, 0},
		{"no certificate", config.TLSConfig{Mode: "server"}, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{TLSConfig: tt.tls, Out: io.Discard}
			got, err := s.buildTLSConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.ClientAuth != tt.wantAuth {
				t.Errorf("Expected client auth %v, got %v", tt.wantAuth, got.ClientAuth)
			}
			if got.MinVersion != tt.wantMin {
				t.Errorf("Expected min version %x, got %x", tt.wantMin, got.MinVersion)
			}
			if len(got.Certificates) != 1 {
				t.Errorf("Expected one static certificate, got %d", len(got.Certificates))
			}
		})
	}
}

func TestCipherSuiteIDs(t *testing.T) {
	ids := cipherSuiteIDs([]string{"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256", "NOT_A_SUITE"})
	if len(ids) != 1 || ids[0] != tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256 {
		t.Errorf("Unexpected suites %v", ids)
	}
	if cipherSuiteIDs(nil) != nil {
		t.Error("Expected nil for no configured suites")
	}
}
