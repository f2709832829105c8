package common

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ResolveOutputFormat returns the requested format, or defaultFormat when
// none was given, after checking it against supportedFormats
func ResolveOutputFormat(requested, defaultFormat string, supportedFormats []string) (string, error) {
	format := strings.TrimSpace(requested)
	if format == "" {
		format = defaultFormat
	}
	if format == "" {
		format = "json"
	}
	if err := ValidateOutputFormat(format, supportedFormats); err != nil {
		return "", err
	}
	return format, nil
}
