package config

import "time"

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Database  DatabaseConfig  `koanf:"database"`
	Slack     SlackConfig     `koanf:"slack"`
	Image     ImageConfig     `koanf:"image"`
	Telemetry TelemetryConfig `koanf:"telemetry"`

	// Workspace and Credentials are resolved by Load from the command line
	// and the environment, never from the config file.
	Workspace   string      `koanf:"-"`
	Credentials Credentials `koanf:"-"`
}

// Credentials are the Slack user credentials used to drive the web login.
type Credentials struct {
	Email    string
	Password string
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type CatalogConfig struct {
	BaseURL         string        `koanf:"base_url"`
	Timeout         time.Duration `koanf:"timeout"`
	CrawlCategories bool          `koanf:"crawl_categories"`
}

type DatabaseConfig struct {
	// Path to the ledger database. When empty, a workspace-scoped default
	// (.slackmoji.<workspace>.db) is derived at startup.
	Path string `koanf:"path"`
}

type SlackConfig struct {
	Timeout        time.Duration `koanf:"timeout"`
	SyncBatchSize  int           `koanf:"sync_batch_size"`
	RecordTaken    bool          `koanf:"record_taken"`
	RetryRateLimit bool          `koanf:"retry_rate_limit"`
}

type ImageConfig struct {
	Timeout    time.Duration `koanf:"timeout"`
	RasterSize int           `koanf:"raster_size"`
}

type TelemetryConfig struct {
	Enabled     bool              `koanf:"enabled"`
	Endpoint    string            `koanf:"endpoint"`
	Protocol    string            `koanf:"protocol"` // "grpc" or "http"
	Insecure    bool              `koanf:"insecure"`
	SampleRate  float64           `koanf:"sample_rate"`
	ServiceName string            `koanf:"service_name"`
	Headers     map[string]string `koanf:"headers"`
}

func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Catalog: CatalogConfig{
			BaseURL:         "https://slackmojis.com",
			Timeout:         30 * time.Second,
			CrawlCategories: true,
		},
		Slack: SlackConfig{
			Timeout:        60 * time.Second,
			SyncBatchSize:  500,
			RecordTaken:    false,
			RetryRateLimit: true,
		},
		Image: ImageConfig{
			Timeout:    30 * time.Second,
			RasterSize: 128,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			Insecure:    true,
			SampleRate:  1.0,
			ServiceName: "slackmoji",
		},
	}
}
