package common

import "testing"

func TestValidateOutputFormat(t *testing.T) {
	all := []string{"json", "text", "markdown"}
	tests := []struct {
		name      string
		format    string
		supported []string
		wantErr   string
	}{
		{"json", "json", all, ""},
		{"markdown", "markdown", all, ""},
		{"unknown format", "yaml", all, "unsupported output format 'yaml'. Supported formats: [json text markdown]"},
		{"formats are case sensitive", "JSON", all, "unsupported output format 'JSON'. Supported formats: [json text markdown]"},
		{"empty format", "", all, "unsupported output format ''. Supported formats: [json text markdown]"},
		{"no restriction configured", "xml", nil, ""},
		{"restricted to json", "text", []string{"json"}, "unsupported output format 'text'. Supported formats: [json]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Expected error %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResolveOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}
	tests := []struct {
		name          string
		requested     string
		defaultFormat string
		expected      string
		expectError   bool
	}{
		{name: "explicit format", requested: "markdown", defaultFormat: "json", expected: "markdown"},
		{name: "falls back to default", requested: "", defaultFormat: "text", expected: "text"},
		{name: "whitespace uses default", requested: "  ", defaultFormat: "text", expected: "text"},
		{name: "no default uses json", requested: "", defaultFormat: "", expected: "json"},
		{name: "unsupported format", requested: "xml", defaultFormat: "json", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutputFormat(tt.requested, tt.defaultFormat, supported)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got format %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected format %q, got %q", tt.expected, got)
			}
		})
	}
}

func BenchmarkResolveOutputFormat(b *testing.B) {
	supported := []string{"json", "text", "markdown"}
	for b.Loop() {
		_, _ = ResolveOutputFormat("", "markdown", supported)
	}
}
