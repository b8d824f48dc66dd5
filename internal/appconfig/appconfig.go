// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout bounds a single provider request.
	defaultRequestTimeout = 600 * time.Second
	// defaultRetryDelay is the fixed back-off between failed provider calls.
	defaultRetryDelay = 60 * time.Second
	// defaultMaxTokens caps generated output per completion.
	defaultMaxTokens = 2000
	defaultDataDir   = "data"
	defaultProject   = "grammar_correction"
	defaultOllamaURL = "http://localhost:11434"

	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the top-level application configuration.
type Config struct {
	DataDir           string   `json:"dataDir,omitempty"`
	Project           string   `json:"project,omitempty"`
	Provider          Provider `json:"provider"`
	Dataset           Dataset  `json:"dataset"`
	CachePath         string   `json:"cachePath,omitempty"`
	Temperature       float64  `json:"temperature" validate:"gte=0,lte=2"`
	MaxTokens         int      `json:"maxTokens,omitempty" validate:"gte=0"`
	Stream            *bool    `json:"stream,omitempty"`
	RetryDelaySeconds int      `json:"retryDelaySeconds,omitempty" validate:"gte=0"`
	MaxAttempts       int      `json:"maxAttempts,omitempty" validate:"gte=0"`
	RequestsPerMinute int      `json:"requestsPerMinute,omitempty" validate:"gte=0"`
	TimeoutSeconds    int      `json:"timeout,omitempty" mapstructure:"timeout" validate:"gte=0"`
	LogFile           string   `json:"logFile,omitempty"`
	Debug             bool     `json:"debug"`
	Secrets           Secrets  `json:"-" mapstructure:"-"`
	ConfigPath        string   `json:"-" mapstructure:"-"`
}

// Provider selects the completion backend.
type Provider struct {
	Type string `json:"type,omitempty" validate:"omitempty,oneof=openai ollama"`
	URL  string `json:"url,omitempty" validate:"omitempty,url"`
}

// Dataset selects the SQL backend holding the train and test splits.
type Dataset struct {
	Driver string `json:"driver,omitempty" validate:"omitempty,oneof=sqlite postgres"`
	DSN    string `json:"dsn,omitempty"`
}

// Secrets are read from the environment only and never written to disk.
type Secrets struct {
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
}

var validate = validator.New()

// Validate checks field constraints on the merged configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadSecrets fills Secrets from the process environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return Secrets{}, fmt.Errorf("read environment: %w", err)
	}
	return s, nil
}

// DataRoot returns the directory holding projects and the completion cache.
func (c Config) DataRoot() string {
	if d := strings.TrimSpace(c.DataDir); d != "" {
		return d
	}
	return defaultDataDir
}

// ProjectName returns the configured project, falling back to the default.
func (c Config) ProjectName() string {
	if p := strings.TrimSpace(c.Project); p != "" {
		return p
	}
	return defaultProject
}

// ProviderType returns the normalized completion backend name.
func (c Config) ProviderType() string {
	t := strings.ToLower(strings.TrimSpace(c.Provider.Type))
	if t == "" {
		return ProviderOpenAI
	}
	return t
}

// ProviderURL returns the backend base URL, if any.
func (c Config) ProviderURL() string {
	if u := strings.TrimSpace(c.Provider.URL); u != "" {
		return strings.TrimRight(u, "/")
	}
	if c.ProviderType() == ProviderOllama {
		return defaultOllamaURL
	}
	return strings.TrimRight(strings.TrimSpace(c.Secrets.OpenAIBaseURL), "/")
}

// DatasetDriver returns the database/sql driver name for the dataset store.
func (c Config) DatasetDriver() string {
	d := strings.ToLower(strings.TrimSpace(c.Dataset.Driver))
	if d == "" {
		return DriverSQLite
	}
	return d
}

// DatasetDSN returns the dataset connection string. SQLite defaults to the
// project's dataset.sqlite3 file.
func (c Config) DatasetDSN() string {
	if dsn := strings.TrimSpace(c.Dataset.DSN); dsn != "" {
		return dsn
	}
	if c.DatasetDriver() == DriverSQLite {
		return filepath.Join(c.DataRoot(), c.ProjectName(), "dataset.sqlite3")
	}
	return ""
}

// CacheDir returns the completion cache directory.
func (c Config) CacheDir() string {
	if p := strings.TrimSpace(c.CachePath); p != "" {
		return p
	}
	return filepath.Join(c.DataRoot(), "llm_cache")
}

// MaxOutputTokens returns the completion token limit.
func (c Config) MaxOutputTokens() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

// Streaming reports whether completions are streamed. Defaults to true.
func (c Config) Streaming() bool {
	if c.Stream == nil {
		return true
	}
	return *c.Stream
}

// RetryDelay returns the fixed wait between failed provider calls.
func (c Config) RetryDelay() time.Duration {
	if c.RetryDelaySeconds <= 0 {
		return defaultRetryDelay
	}
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// RequestTimeout returns the timeout duration for a single provider request.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "fewshot.log"
}
