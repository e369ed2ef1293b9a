package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Provider        ProviderConfig `yaml:"provider"`
	Crawl           CrawlConfig    `yaml:"crawl"`
	Language        string         `yaml:"language"`
	UseCache        bool           `yaml:"use_cache"`
	MaxAbstractions int            `yaml:"max_abstractions"`
	OutputDir       string         `yaml:"output_dir"`
	LogLevel        string         `yaml:"log_level"`
}

// ProviderConfig points at an OpenAI-compatible chat completions endpoint.
type ProviderConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env"`
	APITimeout string `yaml:"api_timeout"`
}

// CrawlConfig bounds which source files are collected from a repository.
type CrawlConfig struct {
	IncludePatterns []string `yaml:"include_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	MaxFileSize     string   `yaml:"max_file_size"`
	MaxFiles        int      `yaml:"max_files"`
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Provider.Endpoint == "" {
		return fmt.Errorf("provider.endpoint is required")
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("provider.model is required")
	}
	if c.MaxAbstractions < 1 {
		return fmt.Errorf("max_abstractions must be at least 1")
	}
	return nil
}

// APIKey returns the provider API key from the configured environment variable.
func (c *Config) APIKey() string {
	if c.Provider.APIKeyEnv == "" {
		return os.Getenv("OPENROUTER_API_KEY")
	}
	return os.Getenv(c.Provider.APIKeyEnv)
}

// Load resolves config from project → user → defaults.
func Load() (*Config, error) {
	cfg := defaults()

	// user-level config
	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".tutorgen", "config.yaml")
		if err := mergeFile(cfg, userPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	// project-level config (highest priority)
	projectPath := filepath.Join(".tutorgen", "config.yaml")
	if err := mergeFile(cfg, projectPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

func mergeFile(dst *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, dst)
}

func defaults() *Config {
	return &Config{
		Provider: ProviderConfig{
			Endpoint:   "https://openrouter.ai/api/v1",
			Model:      "google/gemini-2.5-pro",
			APIKeyEnv:  "OPENROUTER_API_KEY",
			APITimeout: "300s",
		},
		Crawl: CrawlConfig{
			IncludePatterns: []string{
				"*.go", "*.py", "*.js", "*.ts", "*.tsx", "*.jsx",
				"*.rs", "*.java", "*.c", "*.cc", "*.cpp", "*.h",
				"*.md", "*.rst", "Dockerfile", "Makefile", "*.yaml", "*.yml",
			},
			ExcludePatterns: []string{
				"vendor/", "node_modules/", ".git/", ".tutorgen/",
				"dist/", "build/", "assets/", "venv/", "*test*",
			},
			MaxFileSize: "100KB",
			MaxFiles:    200,
		},
		Language:        "english",
		UseCache:        true,
		MaxAbstractions: 10,
		OutputDir:       "output",
		LogLevel:        "info",
	}
}
