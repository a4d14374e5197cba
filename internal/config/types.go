// Package config loads planner settings from layered JSON or YAML files and
// the process environment.
package config

import (
	"net"
	"strconv"
)

// Config is the top-level configuration.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Export     ExportConfig     `json:"export" yaml:"export"`

	// badPort holds a PORT value that was not a number.
	badPort string
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host           string   `json:"host" yaml:"host"`
	Port           int      `json:"port" yaml:"port"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"` // CORS
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver   string `json:"driver" yaml:"driver"`                         // "sqlite" or "mongo"
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`         // sqlite file
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`           // mongo connection string
	Database string `json:"database,omitempty" yaml:"database,omitempty"` // mongo database
}

// GenerationConfig selects the model backend used for task breakdowns.
type GenerationConfig struct {
	Backend      string `json:"backend" yaml:"backend"` // "gemini" or "claude"
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey       string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Command      string `json:"command,omitempty" yaml:"command,omitempty"` // claude CLI binary
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	Timeout      string `json:"timeout,omitempty" yaml:"timeout,omitempty"` // Go duration; empty means none
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"` // debug, info, warn, error
	JSON  bool   `json:"json" yaml:"json"`
}

// ExportConfig locates Google Tasks OAuth files.
type ExportConfig struct {
	CredentialsDir string `json:"credentials_dir" yaml:"credentials_dir"` // holds oauth_client.json and token.json
}
