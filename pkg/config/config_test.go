package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/soulforge-ai/soulforge/pkg/llm"
)

func TestLoad(t *testing.T) {
	// Neutralize any ambient override so the file values are what load.
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("SOULFORGE_REDIS_ADDR", "")

	// Create a temporary config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	testConfig := Config{
		AnthropicAPIKey: "test-key",
		Models: ModelsConfig{
			Synthesis: "claude-test-synthesis",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
	}

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}

	err = os.WriteFile(configPath, data, 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	// Test loading the config.
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != testConfig.AnthropicAPIKey {
		t.Errorf("Expected API key %s, got %s", testConfig.AnthropicAPIKey, cfg.AnthropicAPIKey)
	}

	if cfg.GetSynthesisModel() != "claude-test-synthesis" {
		t.Errorf("Expected configured synthesis model, got %s", cfg.GetSynthesisModel())
	}

	if cfg.GetChatModel() != llm.ClaudeModel {
		t.Errorf("Expected default chat model, got %s", cfg.GetChatModel())
	}

	if cfg.Limits.MaxRequests != 30 || cfg.Limits.WindowSeconds != 60 {
		t.Errorf("Expected gating defaults to be filled, got %+v", cfg.Limits)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	err := os.WriteFile(configPath, []byte(`{"anthropic_api_key":"file-key"}`), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("SOULFORGE_REDIS_ADDR", "redis.internal:6379")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != "env-key" {
		t.Errorf("Environment should override the file key, got %s", cfg.AnthropicAPIKey)
	}

	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Environment should override the redis address, got %s", cfg.Redis.Addr)
	}
}

func TestLoadNonexistent(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	if err == nil {
		t.Error("Expected error loading nonexistent config, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
	}{
		{
			name:      "valid config",
			config:    Config{AnthropicAPIKey: "test-key"},
			wantError: false,
		},
		{
			name:      "missing api key",
			config:    Config{},
			wantError: true,
		},
		{
			name: "negative limits",
			config: Config{
				AnthropicAPIKey: "test-key",
				Limits:          LimitsConfig{MaxRequests: -1},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := InitConfig(configPath); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load initialized config: %v", err)
	}

	if cfg.Models.Fallback != llm.ClaudeFallbackModel {
		t.Errorf("Expected the fallback model in the template, got %s", cfg.Models.Fallback)
	}

	// A second init must not clobber the file.
	if err := InitConfig(configPath); err == nil {
		t.Error("Expected error initializing over an existing config")
	}
}
