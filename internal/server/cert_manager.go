package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"veracity/internal/config"
	"veracity/internal/errors"
	"veracity/internal/observability"
)

const expiryReportInterval = time.Minute

// CertificateManager serves TLS certificates that can be swapped at runtime
// when the files on disk or the Vault secret change
type CertificateManager struct {
	mu sync.RWMutex

	serverCert       *tls.Certificate
	serverCertExpiry time.Time
	serverSubject    string
	caCertPool       *x509.CertPool

	fileWatcher  *CertWatcher
	vaultWatcher *VaultWatcher

	config      *config.TLSConfig
	autoReload  *config.AutoReloadConfig
	vaultClient SecretReader

	reloadCallbacks []ReloadCallback
	metrics         *observability.Metrics
	logger          *errors.Logger
	stats           CertificateMetrics
	stop            chan struct{}
	stopOnce        sync.Once
}

// ReloadCallback is called after every reload attempt
type ReloadCallback func(success bool, err error)

// CertificateMetrics counts reload attempts
type CertificateMetrics struct {
	ReloadCount        int64     `json:"reload_count"`
	ReloadSuccessCount int64     `json:"reload_success_count"`
	ReloadFailureCount int64     `json:"reload_failure_count"`
	LastReloadTime     time.Time `json:"last_reload_time"`
	LastReloadSuccess  bool      `json:"last_reload_success"`
	LastReloadError    string    `json:"last_reload_error,omitempty"`
}

// NewCertificateManager creates a certificate manager. vaultClient may be nil
// when certificates only come from files.
func NewCertificateManager(tlsConfig *config.TLSConfig, vaultClient SecretReader, metrics *observability.Metrics, logger *errors.Logger) *CertificateManager {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}
	return &CertificateManager{
		config:      tlsConfig,
		autoReload:  &tlsConfig.AutoReload,
		vaultClient: vaultClient,
		metrics:     metrics,
		logger:      logger,
		stop:        make(chan struct{}),
	}
}

// Start loads the initial certificates and starts the configured watchers
func (cm *CertificateManager) Start() error {
	if err := cm.loadCertificates(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	go cm.reportExpiry(expiryReportInterval)

	if err := cm.startFileWatcher(); err != nil {
		return err
	}
	return cm.startVaultWatcher()
}

func (cm *CertificateManager) startFileWatcher() error {
	if !cm.autoReload.FileWatcher.Enabled {
		return nil
	}
	if cm.config.CertFile == "" && cm.config.KeyFile == "" && cm.config.CAFile == "" {
		return nil
	}

	watcher := NewCertWatcher(
		[]string{cm.config.CertFile, cm.config.KeyFile, cm.config.CAFile},
		cm.autoReload.FileWatcher.DebounceDelay,
		cm.triggerReload,
		cm.logger,
	)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	cm.fileWatcher = watcher
	return nil
}

func (cm *CertificateManager) startVaultWatcher() error {
	vwCfg := cm.autoReload.VaultWatcher
	if !vwCfg.Enabled {
		return nil
	}
	if cm.config.CertContent == "" && cm.config.KeyContent == "" && cm.config.CAContent == "" {
		return nil
	}
	if cm.vaultClient == nil {
		cm.logger.Warn("Vault watcher enabled but no Vault client is configured")
		return nil
	}

	watcher := NewVaultWatcher(cm.vaultClient, vwCfg.SecretPath, vwCfg.PollInterval, cm.applyVaultCertificates, cm.logger)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start Vault watcher: %w", err)
	}
	cm.vaultWatcher = watcher
	return nil
}

// applyVaultCertificates swaps in PEM content fetched from Vault
func (cm *CertificateManager) applyVaultCertificates(data *CertificateData, err error) {
	if err != nil {
		cm.recordFailure(err)
		return
	}

	cm.mu.Lock()
	if data.CertContent != "" {
		cm.config.CertContent = data.CertContent
	}
	if data.KeyContent != "" {
		cm.config.KeyContent = data.KeyContent
	}
	if data.CAContent != "" {
		cm.config.CAContent = data.CAContent
	}
	cm.mu.Unlock()

	cm.triggerReload()
}

// Stop stops the watchers and expiry reporting
func (cm *CertificateManager) Stop() error {
	cm.stopOnce.Do(func() { close(cm.stop) })

	var errs []error
	if cm.fileWatcher != nil {
		if err := cm.fileWatcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if cm.vaultWatcher != nil {
		if err := cm.vaultWatcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to stop certificate watchers: %v", errs)
	}
	cm.logger.Info("Certificate manager stopped")
	return nil
}

// GetServerCertificate returns the current server certificate for TLS handshakes
func (cm *CertificateManager) GetServerCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	cert, expiry := cm.serverCert, cm.serverCertExpiry
	cm.mu.RUnlock()

	if cert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}
	now := time.Now()
	if now.After(expiry) {
		cm.logger.Warn("Server certificate expired", "expiry", expiry, "server_name", hello.ServerName)
		return nil, fmt.Errorf("server certificate expired")
	}
	if renew := cm.autoReload.PreemptiveRenewal; renew > 0 && now.After(expiry.Add(-renew)) {
		go cm.triggerReload()
	}
	return cert, nil
}

// GetCACertPool returns the current CA certificate pool
func (cm *CertificateManager) GetCACertPool() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caCertPool
}

// VerifyPeerCertificate verifies client certificates against the current CA pool
func (cm *CertificateManager) VerifyPeerCertificate(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("no peer certificates provided")
	}
	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("failed to parse peer certificate: %w", err)
	}

	pool := cm.GetCACertPool()
	if pool == nil {
		return fmt.Errorf("no CA certificate pool available")
	}
	opts := x509.VerifyOptions{
		Roots:     pool,
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	if _, err := cert.Verify(opts); err != nil {
		return fmt.Errorf("peer certificate verification failed: %w", err)
	}
	return nil
}

// ReloadCertificates reloads certificates immediately
func (cm *CertificateManager) ReloadCertificates() error {
	return cm.loadCertificates()
}

// AddReloadCallback registers a callback for reload attempts
func (cm *CertificateManager) AddReloadCallback(callback ReloadCallback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.reloadCallbacks = append(cm.reloadCallbacks, callback)
}

// CheckExpiry returns the time until the server certificate expires
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCertExpiry.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cm.serverCertExpiry), nil
}

// GetMetrics returns a snapshot of the reload counters
func (cm *CertificateManager) GetMetrics() CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.stats
}

// loadCertificates parses the configured certificates and swaps them in
// only when all of them are valid
func (cm *CertificateManager) loadCertificates() error {
	cm.mu.Lock()
	cfg := *cm.config
	cm.mu.Unlock()

	cert, leaf, err := loadKeyPair(cfg)
	if err != nil {
		return err
	}
	pool, err := loadCAPool(cfg)
	if err != nil {
		return err
	}

	cm.mu.Lock()
	if cert != nil {
		cm.serverCert = cert
		cm.serverCertExpiry = leaf.NotAfter
		cm.serverSubject = leaf.Subject.CommonName
	}
	cm.caCertPool = pool
	cm.recordAttemptLocked(true, nil)
	callbacks := append([]ReloadCallback(nil), cm.reloadCallbacks...)
	expiry := cm.serverCertExpiry
	cm.mu.Unlock()

	cm.metrics.RecordCertReload(context.Background(), true)
	cm.reportExpiryOnce()
	for _, cb := range callbacks {
		go cb(true, nil)
	}
	cm.logger.Info("Certificates loaded", "server_cert_expiry", expiry)
	return nil
}

// loadKeyPair loads the server key pair from PEM content or files. It
// returns nil when no server certificate is configured.
func loadKeyPair(cfg config.TLSConfig) (*tls.Certificate, *x509.Certificate, error) {
	var (
		cert tls.Certificate
		err  error
	)
	switch {
	case cfg.CertContent != "" && cfg.KeyContent != "":
		cert, err = tls.X509KeyPair([]byte(cfg.CertContent), []byte(cfg.KeyContent))
	case cfg.CertFile != "" && cfg.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	default:
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load server certificate: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse server certificate: %w", err)
	}
	cert.Leaf = leaf
	return &cert, leaf, nil
}

// loadCAPool loads the client CA bundle in mutual TLS mode
func loadCAPool(cfg config.TLSConfig) (*x509.CertPool, error) {
	if cfg.Mode != "mutual" {
		return nil, nil
	}

	var pem []byte
	switch {
	case cfg.CAContent != "":
		pem = []byte(cfg.CAContent)
	case cfg.CAFile != "":
		data, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pem = data
	default:
		return nil, nil
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return pool, nil
}

// triggerReload is called by watchers and preemptive renewal
func (cm *CertificateManager) triggerReload() {
	cm.logger.Info("Certificate reload triggered")
	if err := cm.loadCertificates(); err != nil {
		cm.recordFailure(err)
	}
}

func (cm *CertificateManager) recordFailure(err error) {
	cm.mu.Lock()
	cm.recordAttemptLocked(false, err)
	callbacks := append([]ReloadCallback(nil), cm.reloadCallbacks...)
	cm.mu.Unlock()

	cm.metrics.RecordCertReload(context.Background(), false)
	cm.logger.LogError(err, "Failed to reload certificates")
	for _, cb := range callbacks {
		go cb(false, err)
	}
}

func (cm *CertificateManager) recordAttemptLocked(success bool, err error) {
	cm.stats.ReloadCount++
	cm.stats.LastReloadTime = time.Now()
	cm.stats.LastReloadSuccess = success
	if success {
		cm.stats.ReloadSuccessCount++
		cm.stats.LastReloadError = ""
		return
	}
	cm.stats.ReloadFailureCount++
	if err != nil {
		cm.stats.LastReloadError = err.Error()
	}
}

func (cm *CertificateManager) reportExpiry(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cm.reportExpiryOnce()
		case <-cm.stop:
			return
		}
	}
}

func (cm *CertificateManager) reportExpiryOnce() {
	cm.mu.RLock()
	subject, expiry := cm.serverSubject, cm.serverCertExpiry
	cm.mu.RUnlock()
	if !expiry.IsZero() {
		cm.metrics.RecordCertExpiry(context.Background(), subject, expiry)
	}
}
