package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks and derived defaults
func (c *Config) applyFallbacks() {
	c.applyClassifierFallbacks()
	c.applyServerAPIKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyClassifierFallbacks fills provider-specific model, endpoint and key defaults
func (c *Config) applyClassifierFallbacks() {
	cl := &c.Classifier
	cl.Provider = strings.ToLower(strings.TrimSpace(cl.Provider))

	switch cl.Provider {
	case ProviderGemini:
		if cl.Model == "" {
			cl.Model = DefaultGeminiModel
		}
		if cl.APIKey == "" {
			cl.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	case ProviderHuggingFace:
		if cl.Model == "" {
			cl.Model = DefaultHuggingFaceModel
		}
		if cl.BaseURL == "" {
			cl.BaseURL = DefaultHuggingFaceBaseURL
		}
		if cl.APIKey == "" {
			cl.APIKey = os.Getenv("HUGGINGFACE_API_KEY")
		}
	}
}

// applyServerAPIKeyFallbacks parses comma-separated server API keys from the environment
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) > 0 {
		return
	}
	if apiKeysEnv := os.Getenv("VERACITY_SERVER_APIKEYS"); apiKeysEnv != "" {
		c.Server.APIKeys = splitKeys(apiKeysEnv)
	}
}

func splitKeys(s string) []string {
	var keys []string
	for _, key := range strings.Split(s, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// trackedEnvVars are reported, masked where sensitive, in the sources summary
var trackedEnvVars = []string{
	"VERACITY_CLASSIFIER_APIKEY",
	"VERACITY_CLASSIFIER_PROVIDER",
	"VERACITY_CLASSIFIER_MODEL",
	"VERACITY_CLASSIFIER_ENABLED",
	"VERACITY_SERVER_PORT",
	"VERACITY_SERVER_HOST",
	"VERACITY_SERVER_APIKEYS",
	"VERACITY_APP_LOGLEVEL",
	"VERACITY_VAULT_ENABLED",
	"GEMINI_API_KEY",
	"HUGGINGFACE_API_KEY",
}

func isSensitiveEnv(name string) bool {
	return strings.Contains(strings.ToLower(name), "key")
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range trackedEnvVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if isSensitiveEnv(envVar) {
			log.Printf("[CONFIG]   %s=***MASKED***", envVar)
		} else {
			log.Printf("[CONFIG]   %s=%s", envVar, value)
		}
		hasEnvVars = true
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Classifier: enabled=%t provider=%s model=%s fallback=%s",
		c.Classifier.Enabled, c.Classifier.Provider, c.Classifier.Model, c.Classifier.FallbackModel)
	if c.Classifier.APIKey != "" {
		log.Println("[CONFIG] Classifier API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] Classifier API Key: ***NOT SET***")
	}
	log.Printf("[CONFIG] Ensemble weights: ai=%.2f rule=%.2f", c.Ensemble.AIWeight, c.Ensemble.RuleWeight)
	log.Printf("[CONFIG] Job verification: company=%t web=%t timeout=%s",
		c.Jobs.CompanyVerificationEnabled, c.Jobs.WebIntelligenceEnabled, c.Jobs.RequestTimeout)
	log.Printf("[CONFIG] Server: %s:%s (TLS %s)", c.Server.Host, c.Server.Port, c.Server.TLS.Mode)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}
