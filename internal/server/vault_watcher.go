package server

import (
	"fmt"
	"sync"
	"time"

	"veracity/internal/config"
	"veracity/internal/errors"
)

const defaultVaultPollInterval = 5 * time.Minute

// SecretReader reads KV v2 secrets. *config.VaultClient implements it.
type SecretReader interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// CertificateData holds PEM content fetched from Vault
type CertificateData struct {
	CertContent string
	KeyContent  string
	CAContent   string
}

// VaultReloadCallback receives new certificate data or the fetch error
type VaultReloadCallback func(data *CertificateData, err error)

// VaultWatcher polls a Vault secret and calls back with its content when
// the secret version increases
type VaultWatcher struct {
	mu sync.RWMutex

	client       SecretReader
	secretPath   string
	pollInterval time.Duration
	onChange     VaultReloadCallback
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastChecked time.Time
	lastError   string
}

// NewVaultWatcher creates a new VaultWatcher
func NewVaultWatcher(client SecretReader, secretPath string, pollInterval time.Duration, onChange VaultReloadCallback, logger *errors.Logger) *VaultWatcher {
	if pollInterval <= 0 {
		pollInterval = defaultVaultPollInterval
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &VaultWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		onChange:     onChange,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start records the current secret version and begins polling
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}

	// the secret already applied at startup must not trigger a reload
	if secret, err := vw.client.GetSecretV2(vw.secretPath); err == nil && secret != nil {
		vw.lastVersion = secret.Version
	}

	vw.running = true
	go vw.pollLoop()
	vw.logger.Info("Vault watcher started", "secret_path", vw.secretPath, "poll_interval", vw.pollInterval)
	return nil
}

// Stop stops the Vault watcher
func (vw *VaultWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if !vw.running {
		return nil
	}
	close(vw.stopChan)
	vw.running = false
	vw.logger.Info("Vault watcher stopped")
	return nil
}

func (vw *VaultWatcher) pollLoop() {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			vw.poll()
		case <-vw.stopChan:
			return
		}
	}
}

// poll fetches the secret once and reports new versions
func (vw *VaultWatcher) poll() {
	data, changed, err := vw.checkForUpdates()
	if err != nil {
		vw.logger.LogError(err, "Failed to check Vault for certificate updates")
		vw.onChange(nil, err)
		return
	}
	if changed {
		vw.logger.Info("Vault certificate secret changed, triggering reload", "version", vw.Status()["last_version"])
		vw.onChange(data, nil)
	}
}

// checkForUpdates reads the secret and returns its certificates when the
// version is newer than the last one seen
func (vw *VaultWatcher) checkForUpdates() (*CertificateData, bool, error) {
	secret, err := vw.client.GetSecretV2(vw.secretPath)

	vw.mu.Lock()
	defer vw.mu.Unlock()
	vw.lastChecked = time.Now()
	if err == nil && secret == nil {
		err = fmt.Errorf("secret %s not found", vw.secretPath)
	}
	if err != nil {
		vw.lastError = err.Error()
		return nil, false, fmt.Errorf("failed to read secret: %w", err)
	}
	vw.lastError = ""

	if secret.Version <= vw.lastVersion {
		return nil, false, nil
	}
	vw.lastVersion = secret.Version
	return certificateDataFrom(secret), true, nil
}

func certificateDataFrom(secret *config.VaultSecret) *CertificateData {
	data := &CertificateData{}
	data.CertContent, _ = secret.Data["cert"].(string)
	data.KeyContent, _ = secret.Data["key"].(string)
	data.CAContent, _ = secret.Data["ca"].(string)
	return data
}

// Status returns the current status of the VaultWatcher for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	status := map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
	}
	if !vw.lastChecked.IsZero() {
		status["last_checked"] = vw.lastChecked.UTC().Format(time.RFC3339)
	}
	if vw.lastError != "" {
		status["last_error"] = vw.lastError
	}
	return status
}
