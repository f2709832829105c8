package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var textExtensions = []string{".txt", ".md", ".markdown", ".text", ".html", ".htm"}

// ValidateInputFile checks that filename names a readable regular file and
// returns its size
func ValidateInputFile(filename string) (int64, error) {
	if filename == "" {
		return 0, fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("file does not exist: %s", filename)
		}
		return 0, fmt.Errorf("cannot access file %s: %w", filename, err)
	}

	if info.IsDir() {
		return 0, fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("failed to close file %s: %w", filename, err)
	}

	return info.Size(), nil
}

// CheckFileSize rejects sizes above limit. A limit of zero or less disables the check.
func CheckFileSize(size, limit int64) error {
	if limit > 0 && size > limit {
		return fmt.Errorf("file size (%s) exceeds maximum allowed size (%s)",
			FormatFileSize(size), FormatFileSize(limit))
	}
	return nil
}

// ValidateOutputFile checks if the output file path is valid
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsTextFile reports whether the file has an extension the text extractors understand
func IsTextFile(filename string) bool {
	return slices.Contains(textExtensions, GetFileExtension(filename))
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
