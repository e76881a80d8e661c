package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration before any network activity happens.
// All problems are reported at once as a joined error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Workspace == "" {
		errs = append(errs, fmt.Errorf("a workspace base URL is required (e.g. https://myteam.slack.com)"))
	} else {
		u, err := url.Parse(cfg.Workspace)
		if err != nil {
			errs = append(errs, fmt.Errorf("workspace is not a valid URL: %w", err))
		} else if u.Scheme != "https" && u.Scheme != "http" {
			errs = append(errs, fmt.Errorf("workspace URL must use http(s), got %q", cfg.Workspace))
		} else if u.Host == "" {
			errs = append(errs, fmt.Errorf("workspace URL has no host: %q", cfg.Workspace))
		}
	}

	if cfg.Credentials.Email == "" || cfg.Credentials.Password == "" {
		errs = append(errs, fmt.Errorf("SLACK_EMAIL and SLACK_PASSWORD must exist in the environment"))
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error"))
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json"))
	}

	if cfg.Catalog.BaseURL == "" {
		errs = append(errs, fmt.Errorf("catalog.base_url is required"))
	} else if _, err := url.Parse(cfg.Catalog.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("catalog.base_url is not a valid URL: %w", err))
	}
	if cfg.Catalog.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("catalog.timeout must be positive"))
	}

	if cfg.Slack.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("slack.timeout must be positive"))
	}
	if cfg.Slack.SyncBatchSize < 1 || cfg.Slack.SyncBatchSize > 1000 {
		errs = append(errs, fmt.Errorf("slack.sync_batch_size must be between 1 and 1000"))
	}

	if cfg.Image.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("image.timeout must be positive"))
	}
	if cfg.Image.RasterSize < 16 || cfg.Image.RasterSize > 512 {
		errs = append(errs, fmt.Errorf("image.raster_size must be between 16 and 512"))
	}

	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.Endpoint == "" {
			errs = append(errs, fmt.Errorf("telemetry.endpoint is required when telemetry is enabled"))
		}
		if cfg.Telemetry.Protocol != "grpc" && cfg.Telemetry.Protocol != "http" {
			errs = append(errs, fmt.Errorf("telemetry.protocol must be grpc or http"))
		}
		if cfg.Telemetry.SampleRate < 0 || cfg.Telemetry.SampleRate > 1 {
			errs = append(errs, fmt.Errorf("telemetry.sample_rate must be between 0.0 and 1.0"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
