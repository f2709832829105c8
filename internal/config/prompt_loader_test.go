package config

import (
	"os"
	"path/filepath"
	"testing"

	"veracity/internal/errors"
)

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()

	content := "Rate the text for machine authorship."
	testFile := filepath.Join(tempDir, "classifier.md")
	if err := os.WriteFile(testFile, []byte("\n"+content+"\n\n"), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loaded, err := loadPromptFromFile(testFile)
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}
	if loaded != content {
		t.Errorf("Expected content '%s', got '%s'", content, loaded)
	}

	emptyFile := filepath.Join(tempDir, "empty.md")
	if err := os.WriteFile(emptyFile, []byte("  \n"), 0600); err != nil {
		t.Fatalf("Failed to create empty test file: %v", err)
	}
	if _, err := loadPromptFromFile(emptyFile); err == nil {
		t.Error("Expected error for blank file")
	}

	if _, err := loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md")); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadClassifierPrompt(t *testing.T) {
	tempDir := t.TempDir()
	promptFile := filepath.Join(tempDir, "system.md")
	if err := os.WriteFile(promptFile, []byte("File prompt"), 0600); err != nil {
		t.Fatalf("Failed to create prompt file: %v", err)
	}

	tests := []struct {
		name       string
		inline     string
		file       string
		wantPrompt string
		wantSource PromptSource
		wantErr    bool
	}{
		{name: "default", wantSource: PromptSourceDefault},
		{name: "inline", inline: "Inline prompt", wantPrompt: "Inline prompt", wantSource: PromptSourceConfig},
		{name: "file overrides inline", inline: "Inline prompt", file: promptFile, wantPrompt: "File prompt", wantSource: PromptSourceFile},
		{name: "missing file", file: filepath.Join(tempDir, "missing.md"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Classifier: ClassifierConfig{SystemPrompt: tt.inline, SystemPromptFile: tt.file}}
			err := c.loadClassifierPrompt()
			if tt.wantErr {
				if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
					t.Errorf("Expected invalid configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c.Classifier.SystemPrompt != tt.wantPrompt {
				t.Errorf("Expected prompt %q, got %q", tt.wantPrompt, c.Classifier.SystemPrompt)
			}
			if got := c.ClassifierPromptSource(); got != tt.wantSource {
				t.Errorf("Expected source %q, got %q", tt.wantSource, got)
			}
		})
	}
}
