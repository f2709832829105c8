package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"veracity/internal/errors"
)

// PromptSource describes where the classifier system prompt came from
type PromptSource string

const (
	PromptSourceDefault PromptSource = "default"
	PromptSourceConfig  PromptSource = "config"
	PromptSourceFile    PromptSource = "file"
)

// ClassifierPromptSource reports which source supplies the classifier system prompt.
// A prompt file takes precedence over an inline prompt.
func (c *Config) ClassifierPromptSource() PromptSource {
	switch {
	case c.Classifier.SystemPromptFile != "":
		return PromptSourceFile
	case c.Classifier.SystemPrompt != "":
		return PromptSourceConfig
	default:
		return PromptSourceDefault
	}
}

// loadClassifierPrompt replaces the inline system prompt with the file content when a file is set
func (c *Config) loadClassifierPrompt() error {
	path := c.Classifier.SystemPromptFile
	if path == "" {
		log.Printf("[CONFIG] Classifier system prompt source: %s", c.ClassifierPromptSource())
		return nil
	}

	content, err := loadPromptFromFile(path)
	if err != nil {
		return errors.NewInvalidConfigurationError("failed to load classifier system prompt", err)
	}
	if c.Classifier.SystemPrompt != "" {
		log.Println("[CONFIG] Classifier system prompt file overrides the inline prompt")
	}
	c.Classifier.SystemPrompt = content
	return nil
}

// loadPromptFromFile reads a prompt file, rejecting missing or blank files
func loadPromptFromFile(filePath string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for prompt file '%s': %w", filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("prompt file not found: %s", absPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file '%s': %w", absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("prompt file '%s' is empty", absPath)
	}

	log.Printf("[CONFIG] Successfully loaded classifier system prompt from file: %s (%d characters)", absPath, len(trimmed))
	return trimmed, nil
}
