package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "FOCUSFLOW"

// Storage backends
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// LLM providers
const (
	ProviderNemotron  = "nemotron"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderNone      = "none"
)

// Timer holds block defaults and countdown pacing.
type Timer struct {
	FocusMinutes int           `yaml:"focus_minutes" envconfig:"FOCUS_MINUTES"`
	BreakMinutes int           `yaml:"break_minutes" envconfig:"BREAK_MINUTES"`
	StartDelay   time.Duration `yaml:"start_delay" envconfig:"START_DELAY"`
	Tick         time.Duration `yaml:"tick" envconfig:"TICK"`
}

// LLM holds the remote recommendation backend settings.
// An empty APIKey disables the remote path.
type LLM struct {
	Provider string        `yaml:"provider" envconfig:"LLM_PROVIDER"`
	APIURL   string        `yaml:"api_url" envconfig:"NEMOTRON_API_URL"`
	Model    string        `yaml:"model" envconfig:"NEMOTRON_MODEL"`
	APIKey   string        `yaml:"-" envconfig:"NEMOTRON_API_KEY"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"LLM_TIMEOUT"`

	AnthropicKey string `yaml:"-" envconfig:"ANTHROPIC_API_KEY"`
	GeminiKey    string `yaml:"-" envconfig:"GEMINI_API_KEY"`
}

// Config is the full application configuration.
type Config struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR"`
	Storage   string `yaml:"storage" envconfig:"STORAGE"`
	LogLevel  string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`
	Addr      string `yaml:"addr" envconfig:"ADDR"`

	Timer Timer `yaml:"timer"`
	LLM   LLM   `yaml:"llm"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir, err := DataDir()
	if err != nil {
		dataDir = "."
	}
	return Config{
		DataDir:   dataDir,
		Storage:   StorageFile,
		LogLevel:  "info",
		LogFormat: "text",
		Addr:      ":8080",
		Timer: Timer{
			FocusMinutes: 25,
			BreakMinutes: 5,
			StartDelay:   3 * time.Second,
			Tick:         time.Second,
		},
		LLM: LLM{
			Provider: ProviderNemotron,
			APIURL:   "https://integrate.api.nvidia.com/v1/chat/completions",
			Model:    "nvidia/llama-3.3-nemotron-super-49b-v1",
			Timeout:  60 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or the
// default config file when path is empty and it exists) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	if c.Timer.FocusMinutes <= 0 {
		return fmt.Errorf("focus minutes must be positive, got %d", c.Timer.FocusMinutes)
	}
	if c.Timer.BreakMinutes <= 0 {
		return fmt.Errorf("break minutes must be positive, got %d", c.Timer.BreakMinutes)
	}
	if c.Timer.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Timer.Tick)
	}
	if c.Timer.StartDelay < 0 {
		return fmt.Errorf("start delay must not be negative, got %s", c.Timer.StartDelay)
	}
	switch c.Storage {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	switch c.LLM.Provider {
	case ProviderNemotron, ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/focusflow/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, "focusflow", "config.yaml"), nil
}

// DataDir returns the XDG data directory for focusflow.
// It respects XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/focusflow
func DataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "focusflow"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", "focusflow"), nil
}
