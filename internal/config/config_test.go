package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.TimeoutSeconds != 120 {
		t.Errorf("default timeout = %d, want 120", cfg.API.TimeoutSeconds)
	}
	if cfg.Processing.JPEGQuality != 90 {
		t.Errorf("default jpeg quality = %d, want 90", cfg.Processing.JPEGQuality)
	}
	if cfg.Processing.MaxImagePixels != 1_003_520 {
		t.Errorf("default max pixels = %d", cfg.Processing.MaxImagePixels)
	}
	if cfg.Prompts.System == "" || cfg.Prompts.User == "" {
		t.Error("default prompts must be non-empty")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Run("rejects out-of-range jpeg quality", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Processing.JPEGQuality = 101
		if err := Validate(cfg); err == nil {
			t.Error("expected validation error for jpeg_quality=101")
		}
	})

	t.Run("rejects negative temperature", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.API.Temperature = -0.5
		if err := Validate(cfg); err == nil {
			t.Error("expected validation error for temperature=-0.5")
		}
	})

	t.Run("rejects tiny dpi", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Processing.PDFDPI = 10
		if err := Validate(cfg); err == nil {
			t.Error("expected validation error for pdf_dpi=10")
		}
	})
}

func TestResolveEnvVars(t *testing.T) {
	os.Setenv("AURALENS_TEST_KEY", "secret123")
	defer os.Unsetenv("AURALENS_TEST_KEY")

	tests := []struct {
		input, want string
	}{
		{"${AURALENS_TEST_KEY}", "secret123"},
		{"prefix-${AURALENS_TEST_KEY}", "prefix-secret123"},
		{"no-vars", "no-vars"},
		{"", ""},
		{"${UNSET_VAR_XYZ}", ""},
	}

	for _, tt := range tests {
		if got := ResolveEnvVars(tt.input); got != tt.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToVLMConfig(t *testing.T) {
	os.Setenv("AURALENS_TEST_KEY", "resolved-key")
	defer os.Unsetenv("AURALENS_TEST_KEY")

	cfg := DefaultConfig()
	cfg.API.Key = "${AURALENS_TEST_KEY}"
	cfg.API.Model = "minicpm-v"
	cfg.API.TimeoutSeconds = 60

	t.Run("basic mapping", func(t *testing.T) {
		vc := cfg.ToVLMConfig()
		if vc.APIKey != "resolved-key" {
			t.Errorf("APIKey = %q, want resolved env var", vc.APIKey)
		}
		if vc.Timeout != 60*time.Second {
			t.Errorf("Timeout = %v, want 60s", vc.Timeout)
		}
		if vc.MaxTokens != 4096 {
			t.Errorf("MaxTokens = %d, want 4096", vc.MaxTokens)
		}
		if vc.EnableThinking {
			t.Error("thinking enabled without model settings")
		}
	})

	t.Run("thinking budget extends max tokens", func(t *testing.T) {
		cfg.Models = map[string]ModelCfg{
			"minicpm-v": {EnableThinking: true, ThinkingBudget: 2048},
		}
		vc := cfg.ToVLMConfig()
		if !vc.EnableThinking {
			t.Error("EnableThinking not propagated")
		}
		if vc.MaxTokens != 4096+2048 {
			t.Errorf("MaxTokens = %d, want 6144", vc.MaxTokens)
		}
	})

	t.Run("default thinking budget", func(t *testing.T) {
		cfg.Models = map[string]ModelCfg{
			"minicpm-v": {EnableThinking: true},
		}
		vc := cfg.ToVLMConfig()
		if vc.MaxTokens != 4096+DefaultThinkingBudget {
			t.Errorf("MaxTokens = %d, want %d", vc.MaxTokens, 4096+DefaultThinkingBudget)
		}
	})
}

func TestValidateForOCR(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.ValidateForOCR(); err == nil {
		t.Error("expected error when model name is empty")
	}

	cfg.API.Model = "minicpm-v"
	if err := cfg.ValidateForOCR(); err != nil {
		t.Errorf("ValidateForOCR failed with model set: %v", err)
	}

	cfg.API.URL = ""
	if err := cfg.ValidateForOCR(); err == nil {
		t.Error("expected error when API URL is empty")
	}
}

func TestWriteDefault(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "api:") {
		t.Error("written config missing api section")
	}
	if !strings.Contains(content, "${AURALENS_API_KEY}") {
		t.Error("written config missing env var reference for the key")
	}
	if !strings.HasPrefix(content, "# AuraLens configuration") {
		t.Error("written config missing header comment")
	}
}
