package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default classifier endpoints and models
const (
	DefaultGeminiModel        = "gemini-2.0-flash"
	DefaultHuggingFaceModel   = "Hello-SimpleAI/chatgpt-detector-roberta"
	DefaultZeroShotModel      = "facebook/bart-large-mnli"
	DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models"
	DefaultRDAPURL            = "https://rdap.org"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Classifier
	v.SetDefault("classifier.enabled", true)
	v.SetDefault("classifier.provider", ProviderHuggingFace)
	v.SetDefault("classifier.model", "")
	v.SetDefault("classifier.fallbackModel", DefaultZeroShotModel)
	v.SetDefault("classifier.apiKey", "")
	v.SetDefault("classifier.baseURL", "")
	v.SetDefault("classifier.timeout", 30*time.Second)
	v.SetDefault("classifier.maxRetries", 3)
	v.SetDefault("classifier.temperature", 0.0)
	v.SetDefault("classifier.systemPrompt", "")
	v.SetDefault("classifier.systemPromptFile", "")

	v.SetDefault("classifier.circuitBreaker.enabled", true)
	v.SetDefault("classifier.circuitBreaker.maxRequests", 3)
	v.SetDefault("classifier.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("classifier.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("classifier.circuitBreaker.minRequests", 3)
	v.SetDefault("classifier.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("classifier.cache.enabled", true)
	v.SetDefault("classifier.cache.backend", CacheBackendMemory)
	v.SetDefault("classifier.cache.ttl", time.Hour)
	v.SetDefault("classifier.cache.maxEntries", 1000)
	v.SetDefault("classifier.cache.redisURL", "")

	// Ensemble and scoring
	v.SetDefault("ensemble.aiWeight", 0.7)
	v.SetDefault("ensemble.ruleWeight", 0.3)
	v.SetDefault("scoring.lexiconFile", "")
	v.SetDefault("scoring.patternThreshold", 60.0)

	// Job verification
	v.SetDefault("jobs.companyVerificationEnabled", true)
	v.SetDefault("jobs.webIntelligenceEnabled", true)
	v.SetDefault("jobs.requestTimeout", 10*time.Second)
	v.SetDefault("jobs.userAgent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("jobs.maxRedirects", 5)
	v.SetDefault("jobs.rdapURL", DefaultRDAPURL)

	// Server
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 90*time.Second) // job verification probes several hosts
	v.SetDefault("server.idleTimeout", 120*time.Second)

	v.SetDefault("server.tls.mode", "disabled") // disabled, server, mutual
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.cipherSuites", []string{})
	v.SetDefault("server.tls.clientAuthPolicy", "require")
	v.SetDefault("server.tls.insecureSkipVerify", false)
	v.SetDefault("server.tls.serverName", "")

	v.SetDefault("server.tls.autoReload.enabled", true)
	v.SetDefault("server.tls.autoReload.checkInterval", 30*time.Second)
	v.SetDefault("server.tls.autoReload.preemptiveRenewal", 72*time.Hour)
	v.SetDefault("server.tls.autoReload.maxRetries", 3)
	v.SetDefault("server.tls.autoReload.retryDelay", 10*time.Second)
	v.SetDefault("server.tls.autoReload.fileWatcher.enabled", true)
	v.SetDefault("server.tls.autoReload.fileWatcher.debounceDelay", time.Second)
	v.SetDefault("server.tls.autoReload.vaultWatcher.enabled", false)
	v.SetDefault("server.tls.autoReload.vaultWatcher.pollInterval", 5*time.Minute)
	v.SetDefault("server.tls.autoReload.vaultWatcher.autoRenew", true)
	v.SetDefault("server.tls.autoReload.vaultWatcher.renewThreshold", 24*time.Hour)
	v.SetDefault("server.tls.autoReload.vaultWatcher.secretPath", "")

	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 5*1024*1024) // 5MB

	// Vault
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.classifierKey", "")
	v.SetDefault("vault.secrets.tlsCerts", "")

	// Observability
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "veracity")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.classifier.enabled", true)
	v.SetDefault("observability.customMetrics.classifier.trackDuration", true)
	v.SetDefault("observability.customMetrics.classifier.trackFallbacks", true)
	v.SetDefault("observability.customMetrics.classifier.trackCacheHits", true)
	v.SetDefault("observability.customMetrics.analysis.enabled", true)
	v.SetDefault("observability.customMetrics.analysis.trackScores", true)
	v.SetDefault("observability.customMetrics.analysis.trackStepFailures", true)
	v.SetDefault("observability.customMetrics.analysis.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackCertExpiry", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.classifierCheckTimeout", 10*time.Second)
}
