package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/vault/api"

	"veracity/internal/errors"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault (KV v2 paths)
type VaultSecrets struct {
	// APIKeys holds a "keys" field of comma-separated server API keys
	APIKeys string `mapstructure:"apiKeys"`
	// ClassifierKey holds an "api_key" field for the classifier provider
	ClassifierKey string `mapstructure:"classifierKey"`
	// TLSCerts holds "cert", "key" and optionally "ca" PEM content
	TLSCerts string `mapstructure:"tlsCerts"`
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient creates a connected Vault client. It returns nil when Vault is disabled.
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	if !config.Enabled {
		logger.Debug("Vault integration disabled")
		return nil, nil
	}

	apiConfig := api.DefaultConfig()
	if config.Address != "" {
		apiConfig.Address = config.Address
	}
	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to create vault client", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		logger.LogError(err, "Failed to connect to Vault", "address", apiConfig.Address)
		return nil, errors.NewNetworkError(errors.ErrCodeFetchFailed, "failed to connect to vault", err).
			WithContext("address", apiConfig.Address)
	}
	logger.Info("Connected to Vault",
		"address", apiConfig.Address,
		"version", health.Version,
		"sealed", health.Sealed,
		"cluster_name", health.ClusterName)

	return &VaultClient{client: client, config: config, logger: logger}, nil
}

// resolveVaultToken prefers the inline token over the token file
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token
	if token == "" && config.TokenFile != "" {
		raw, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read vault token file", err).
				WithContext("file", config.TokenFile)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return "", errors.NewInvalidConfigurationError("vault token is required when vault is enabled", nil)
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	vc.logger.Debug("Reading secret from Vault", "path", path)
	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return decodeKV2(secret.Data, path)
}

// decodeKV2 unpacks the data and metadata envelope of a KV v2 read
func decodeKV2(raw map[string]any, path string) (*VaultSecret, error) {
	data, ok := raw["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := raw["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}
	version, err := secretVersion(versionRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse secret version at %s: %w", path, err)
	}
	return &VaultSecret{Data: data, Version: version}, nil
}

// secretVersion accepts every numeric shape the Vault client may decode
func secretVersion(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected version type %T", v)
	}
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	vc.logger.Debug("String secret retrieved from Vault", "path", path, "key", key, "masked_value", maskSecret(s))
	return s, nil
}

// GetStringSliceSecret retrieves a comma-separated string as a slice from Vault
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := vc.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	return splitKeys(value), nil
}

func maskSecret(s string) string {
	switch {
	case len(s) > 8:
		return s[:4] + "****" + s[len(s)-4:]
	case s != "":
		return "****"
	default:
		return ""
	}
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return err
	}
	return applySecrets(client, config, logger)
}

// secretReader is the part of VaultClient the secret loaders need
type secretReader interface {
	GetSecretV2(path string) (*VaultSecret, error)
	GetStringSecret(path, key string) (string, error)
	GetStringSliceSecret(path, key string) ([]string, error)
}

func applySecrets(client secretReader, config *Config, logger *errors.Logger) error {
	paths := config.Vault.Secrets
	loaders := []struct {
		name string
		path string
		load func(secretReader, string, *Config, *errors.Logger) error
	}{
		{"server API keys", paths.APIKeys, loadAPIKeys},
		{"classifier API key", paths.ClassifierKey, loadClassifierKey},
		{"TLS certificates", paths.TLSCerts, loadTLSCerts},
	}

	for _, l := range loaders {
		if l.path == "" {
			continue
		}
		if err := l.load(client, l.path, config, logger); err != nil {
			logger.LogError(err, "Failed to load secret from Vault", "secret", l.name, "path", l.path)
			return errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("failed to load %s from vault", l.name), err)
		}
	}
	logger.Info("Applied secrets from Vault")
	return nil
}

func loadAPIKeys(client secretReader, path string, config *Config, logger *errors.Logger) error {
	keys, err := client.GetStringSliceSecret(path, "keys")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		logger.Warn("No API keys found in Vault", "path", path)
		return nil
	}
	config.Server.APIKeys = keys
	logger.Info("API keys loaded from Vault", "count", len(keys))
	return nil
}

func loadClassifierKey(client secretReader, path string, config *Config, logger *errors.Logger) error {
	key, err := client.GetStringSecret(path, "api_key")
	if err != nil {
		return err
	}
	if key == "" {
		logger.Warn("Empty classifier API key found in Vault", "path", path)
		return nil
	}
	config.Classifier.APIKey = key
	logger.Info("Classifier API key loaded from Vault", "provider", config.Classifier.Provider)
	return nil
}

// deprecatedTLSFields name file paths that older deployments stored in Vault
var deprecatedTLSFields = []string{"cert_file", "key_file", "ca_file"}

func loadTLSCerts(client secretReader, path string, config *Config, logger *errors.Logger) error {
	secret, err := client.GetSecretV2(path)
	if err != nil {
		return err
	}
	for _, field := range deprecatedTLSFields {
		if _, ok := secret.Data[field]; ok {
			return fmt.Errorf("vault TLS configuration error: '%s' field is no longer supported. Store certificate content in '%s' field instead",
				field, strings.TrimSuffix(field, "_file"))
		}
	}

	tls := &config.Server.TLS
	targets := []struct {
		key    string
		target *string
	}{
		{"cert", &tls.CertContent},
		{"key", &tls.KeyContent},
		{"ca", &tls.CAContent},
	}
	loaded := 0
	for _, t := range targets {
		if content, ok := secret.Data[t.key].(string); ok && content != "" {
			*t.target = content
			loaded++
		}
	}
	logger.Info("TLS certificates loaded from Vault", "certificates_loaded", loaded, "version", secret.Version)
	return nil
}
