package config

// Default values shared with the environment overrides.
const (
	DefaultFrontendURL = "http://localhost:5173"
	DevFrontendURL     = "http://localhost:3000"
	DefaultDatabase    = "smart_task_planner"
	DefaultModel       = "gemini-2.5-flash"
)

// DefaultConfig returns the configuration used when no file or environment
// variable says otherwise.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8000,
			AllowedOrigins: []string{DefaultFrontendURL, DevFrontendURL},
		},
		Store: StoreConfig{
			Driver:   "sqlite",
			Path:     ".taskplanner/planner.db",
			Database: DefaultDatabase,
		},
		Generation: GenerationConfig{
			Backend: "gemini",
			Model:   DefaultModel,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Export: ExportConfig{
			CredentialsDir: ".taskplanner/google",
		},
	}
}
