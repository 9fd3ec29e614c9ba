// Package config loads, validates, and hot-reloads auralens configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/auralens/auralens/internal/vlm"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("api", defaults.API)
	viper.SetDefault("processing", defaults.Processing)
	viper.SetDefault("prompts", defaults.Prompts)
	viper.SetDefault("dirs", defaults.Dirs)

	// Environment variables with AURALENS_ prefix
	viper.SetEnvPrefix("AURALENS")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.auralens")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a validated Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToVLMConfig converts the config into a VLM client config, resolving
// ${ENV_VAR} references in the API key and extending the token budget when
// the configured model runs with thinking enabled.
func (c *Config) ToVLMConfig() vlm.Config {
	settings := c.ModelSettings()
	maxTokens := c.API.MaxTokens
	if settings.EnableThinking {
		maxTokens += settings.ThinkingBudget
	}

	return vlm.Config{
		APIURL:          c.API.URL,
		APIKey:          ResolveEnvVars(c.API.Key),
		Model:           c.API.Model,
		Timeout:         time.Duration(c.API.TimeoutSeconds) * time.Second,
		MaxTokens:       maxTokens,
		Temperature:     c.API.Temperature,
		RepeatPenalty:   c.API.RepeatPenalty,
		PresencePenalty: c.API.PresencePenalty,
		EnableThinking:  settings.EnableThinking,
	}
}

// ValidateForOCR checks the fields an OCR run cannot start without.
func (c *Config) ValidateForOCR() error {
	if c.API.Model == "" {
		return errors.New("model name is not set: add api.model to the config")
	}
	if c.API.URL == "" {
		return errors.New("API URL is not set: add api.url to the config")
	}
	return nil
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# AuraLens configuration
# The API key uses ${ENV_VAR} syntax to reference environment variables
# Set it in your shell: export AURALENS_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
