package config

// Default values for the search controller.
const (
	DefaultPageSize   = 10
	DefaultDebounceMs = 150
	DefaultTimeoutSec = 10
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseDir: DefaultBaseDir(),

		Search: SearchConfig{
			PageSize:   DefaultPageSize,
			DebounceMs: DefaultDebounceMs,
			TimeoutSec: DefaultTimeoutSec,
			ShowImages: true,
		},

		Sources: DefaultSources(),

		Server: ServerConfig{
			Addr:             "127.0.0.1:8420",
			RateLimitPerMin:  600,
			ShutdownTimeoutS: 5,
		},

		Log: LogConfig{Level: "info"},

		Telemetry: TelemetryConfig{Enabled: true},
	}
}

// DefaultSources returns the movielog and booklog feeds.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:       "movielog",
			Kind:       SourceMovie,
			UpdatesURL: "https://www.franksmovielog.com/updates.json",
			BaseURL:    "https://www.franksmovielog.com",
		},
		{
			Name:       "booklog",
			Kind:       SourceBook,
			UpdatesURL: "https://www.franksbooklog.com/updates.json",
			BaseURL:    "https://www.franksbooklog.com",
		},
	}
}
