package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/soulforge-ai/soulforge/pkg/llm"
)

// Config represents the application configuration.
type Config struct {
	AnthropicAPIKey string       `json:"anthropic_api_key"`
	Models          ModelsConfig `json:"models,omitempty"`
	Limits          LimitsConfig `json:"limits,omitempty"`
	Redis           RedisConfig  `json:"redis,omitempty"`
	Corpus          CorpusConfig `json:"corpus,omitempty"`
}

// ModelsConfig holds model selection for synthesis and chat.
type ModelsConfig struct {
	Synthesis string `json:"synthesis,omitempty"`
	Chat      string `json:"chat,omitempty"`
	Fallback  string `json:"fallback,omitempty"`
}

// LimitsConfig holds the request gating knobs.
type LimitsConfig struct {
	MaxRequests     int `json:"max_requests,omitempty"`
	WindowSeconds   int `json:"window_seconds,omitempty"`
	MaxConcurrent   int `json:"max_concurrent,omitempty"`
	DispatchDelayMS int `json:"dispatch_delay_ms,omitempty"`
}

// RedisConfig holds the shared profile cache location. An empty address
// selects the in-memory store.
type RedisConfig struct {
	Addr     string `json:"addr,omitempty"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
}

// CorpusConfig holds post preprocessing defaults.
type CorpusConfig struct {
	MinWords  int  `json:"min_words,omitempty"`
	BatchSize int  `json:"batch_size,omitempty"`
	StyleMode bool `json:"style_mode,omitempty"`
}

// GetSynthesisModel returns the synthesis model or default if not specified.
func (c *Config) GetSynthesisModel() (model string) {
	if c.Models.Synthesis != "" {
		model = c.Models.Synthesis
		return model
	}
	model = llm.ClaudeModel
	return model
}

// GetChatModel returns the chat model or default if not specified.
func (c *Config) GetChatModel() (model string) {
	if c.Models.Chat != "" {
		model = c.Models.Chat
		return model
	}
	model = llm.ClaudeModel
	return model
}

// GetFallbackModel returns the unavailability-fallback model or default if
// not specified.
func (c *Config) GetFallbackModel() (model string) {
	if c.Models.Fallback != "" {
		model = c.Models.Fallback
		return model
	}
	model = llm.ClaudeFallbackModel
	return model
}

// Load reads configuration from file with environment variable overrides.
func Load(configPath string) (cfg Config, err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return cfg, err
		}
		path = filepath.Join(homeDir, ".soulforge", "config.json")
	}

	// Read config file
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("config file not found: %s (run 'soulforge init' to create)", path)
			return cfg, err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	// Parse JSON
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return cfg, err
	}

	// Override with environment variables if set
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.AnthropicAPIKey = apiKey
	}
	if addr := os.Getenv("SOULFORGE_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}

	// Validate required fields
	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks required fields and fills gating defaults.
func (c *Config) Validate() (err error) {
	if c.AnthropicAPIKey == "" {
		err = errors.New("anthropic_api_key is required (set in config or ANTHROPIC_API_KEY env var)")
		return err
	}

	if c.Limits.MaxRequests < 0 || c.Limits.WindowSeconds < 0 ||
		c.Limits.MaxConcurrent < 0 || c.Limits.DispatchDelayMS < 0 {
		err = errors.New("limits must not be negative")
		return err
	}

	// Set gating defaults if not specified
	if c.Limits.MaxRequests == 0 {
		c.Limits.MaxRequests = 30
	}
	if c.Limits.WindowSeconds == 0 {
		c.Limits.WindowSeconds = 60
	}
	if c.Limits.MaxConcurrent == 0 {
		c.Limits.MaxConcurrent = 3
	}
	if c.Limits.DispatchDelayMS == 0 {
		c.Limits.DispatchDelayMS = 100
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return err
		}
		path = filepath.Join(homeDir, ".soulforge", "config.json")
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	defaultConfig := Config{
		AnthropicAPIKey: "sk-ant-api03-...",
		Models: ModelsConfig{
			Synthesis: llm.ClaudeModel,
			Chat:      llm.ClaudeModel,
			Fallback:  llm.ClaudeFallbackModel,
		},
		Limits: LimitsConfig{
			MaxRequests:     30,
			WindowSeconds:   60,
			MaxConcurrent:   3,
			DispatchDelayMS: 100,
		},
		Corpus: CorpusConfig{
			MinWords:  5,
			BatchSize: 50,
		},
	}

	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
