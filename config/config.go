// Package config loads application configuration.
package config

import (
	"os"
	"time"
)

// Config is the root configuration.
type Config struct {
	App     AppConfig     `yaml:"app" mapstructure:"app"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Content ContentConfig `yaml:"content" mapstructure:"content"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	CORS    CORSConfig    `yaml:"cors" mapstructure:"cors"`
}

type AppConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Env  string `yaml:"env" mapstructure:"env"`
}

// ServerConfig configures the --serve mode. There is no write timeout:
// generation responses stream for as long as the model keeps emitting.
type ServerConfig struct {
	Addr        string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// LLMConfig selects and authenticates the generation backend.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	APIKeyEnv string `yaml:"api_key_env" mapstructure:"api_key_env"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
}

// ResolveAPIKey returns the configured key, falling back to the environment
// variable named by APIKeyEnv and then GOOGLE_API_KEY. It may return "".
func (c LLMConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		if v := os.Getenv(c.APIKeyEnv); v != "" {
			return v
		}
	}
	return os.Getenv("GOOGLE_API_KEY")
}

// ContentConfig bounds the requested word count.
type ContentConfig struct {
	MinWords     int `yaml:"min_words" mapstructure:"min_words"`
	MaxWords     int `yaml:"max_words" mapstructure:"max_words"`
	WordStep     int `yaml:"word_step" mapstructure:"word_step"`
	DefaultWords int `yaml:"default_words" mapstructure:"default_words"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}
