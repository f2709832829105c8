package server

import "fmt"

// displayServerInfo prints the endpoints and protection settings at startup
func (s *Server) displayServerInfo() {
	w := s.out()

	fmt.Fprintln(w, "Available endpoints:")
	fmt.Fprintln(w, "  GET  /health          - Health check")
	fmt.Fprintln(w, "  GET  /stats           - Rate limiter and circuit breaker statistics")
	fmt.Fprintln(w, "  POST /analyze-resume  - Résumé authenticity analysis")
	fmt.Fprintln(w, "  POST /analyze-job     - Job posting verification")

	if len(s.APIKeys) > 0 {
		fmt.Fprintf(w, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Fprintln(w, "Include 'X-API-Key: <your-key>' on every endpoint except /health")
	} else {
		fmt.Fprintln(w, "API authentication: DISABLED (no API keys configured)")
		fmt.Fprintln(w, "WARNING: API endpoints are publicly accessible!")
	}

	if s.MaxRequestSize > 0 {
		fmt.Fprintf(w, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Fprintln(w, "Request size limit: DISABLED")
	}

	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Fprintf(w, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Fprintln(w, "  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Fprintln(w, "  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Fprintln(w, "Rate limiting: DISABLED")
	}

	if s.Engine.ClassifierEnabled() {
		fmt.Fprintf(w, "Classifier: %s (%s)\n", s.AppConfig.Classifier.Provider, s.AppConfig.Classifier.Model)
	} else {
		fmt.Fprintln(w, "Classifier: DISABLED (rule-based analysis only)")
	}
}
