package config

const (
	defaultAPIBaseURL          = "http://localhost:8000/api"
	defaultAPITimeoutSeconds   = 30
	defaultAPIUserAgent        = "podmatch-cli/0.1.0"
	defaultSessionPath         = "~/.local/share/podmatch/session.db"
	defaultLogDir              = "~/.local/share/podmatch/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "warn"
	defaultCommentMinLength    = 3
	defaultPollIntervalSeconds = 5
	defaultConfigPath          = "~/.config/podmatch/config.toml"
	projectConfigName          = "podmatch.toml"

	// EnvAPIURL overrides api.base_url when set.
	EnvAPIURL = "PODMATCH_API_URL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeoutSeconds,
			UserAgent:      defaultAPIUserAgent,
		},
		Session: Session{
			Path: defaultSessionPath,
		},
		Comments: Comments{
			MinLength: defaultCommentMinLength,
		},
		Messages: Messages{
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
	}
}
