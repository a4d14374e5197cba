package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aristath/taskplanner/internal/model"
)

// Load reads and merges configuration from global and project paths, then
// applies environment overrides.
// Order of precedence (highest to lowest): environment, project config, global config, defaults.
// Missing files are not errors; malformed files return an error.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// DefaultPaths returns the conventional config locations.
// Global: ~/.taskplanner/config.yaml
// Project: .taskplanner/config.yaml (relative to cwd)
func DefaultPaths() (globalPath, projectPath string, err error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".taskplanner", "config.yaml"), filepath.Join(".taskplanner", "config.yaml"), nil
}

// LoadDefault loads configuration from DefaultPaths.
func LoadDefault() (*Config, error) {
	globalPath, projectPath, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return Load(globalPath, projectPath)
}

// mergeConfigFile overlays the fields present in a JSON or YAML file onto
// base. The format follows the extension; .yaml and .yml are YAML, anything
// else is JSON.
func mergeConfigFile(base *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, base)
	} else {
		err = json.Unmarshal(data, base)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Generation.APIKey = key
	}

	if url := os.Getenv("MONGODB_URL"); url != "" {
		c.Store.URL = url
		c.Store.Driver = "mongo"
	}
	if name := os.Getenv("DATABASE_NAME"); name != "" {
		c.Store.Database = name
	}
	if path := os.Getenv("PLANNER_DB"); path != "" {
		c.Store.Path = path
	}

	// The frontend origin replaces the configured list; the dev server stays allowed.
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		c.Server.AllowedOrigins = []string{url, DevFrontendURL}
	}
	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		} else {
			c.badPort = port
		}
	}
}

// GenerationTimeout parses Generation.Timeout. Empty means no limit.
func (c *Config) GenerationTimeout() (time.Duration, error) {
	if c.Generation.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Generation.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid generation.timeout %q: %v", model.ErrConfiguration, c.Generation.Timeout, err)
	}
	return d, nil
}

// Validate reports settings that would make the server unusable. All
// failures wrap model.ErrConfiguration.
func (c *Config) Validate() error {
	if c.badPort != "" {
		return fmt.Errorf("%w: PORT %q is not a number", model.ErrConfiguration, c.badPort)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server.port %d", model.ErrConfiguration, c.Server.Port)
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for the sqlite driver", model.ErrConfiguration)
		}
	case "mongo":
		if c.Store.URL == "" {
			return fmt.Errorf("%w: MONGODB_URL is required for the mongo driver", model.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", model.ErrConfiguration, c.Store.Driver)
	}

	switch c.Generation.Backend {
	case "gemini":
		if c.Generation.APIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY not found in environment variables", model.ErrConfiguration)
		}
	case "claude":
	default:
		return fmt.Errorf("%w: unknown generation.backend %q", model.ErrConfiguration, c.Generation.Backend)
	}

	if _, err := c.GenerationTimeout(); err != nil {
		return err
	}
	return nil
}
