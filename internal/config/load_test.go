package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsAndPositionalArg(t *testing.T) {
	flags := SetupFlags()
	if err := flags.Parse([]string{"https://myteam.slack.com"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workspace != "https://myteam.slack.com" {
		t.Errorf("Workspace = %q, want positional arg", cfg.Workspace)
	}
	if cfg.Catalog.BaseURL != "https://slackmojis.com" {
		t.Errorf("Catalog.BaseURL = %q, want default", cfg.Catalog.BaseURL)
	}
	if cfg.Slack.Timeout != 60*time.Second {
		t.Errorf("Slack.Timeout = %v, want default 60s", cfg.Slack.Timeout)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SLACKMOJI_LOG_LEVEL", "debug")
	t.Setenv("SLACK_EMAIL", "user@example.com")
	t.Setenv("SLACK_PASSWORD", "hunter2")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want env override %q", cfg.Log.Level, "debug")
	}
	if cfg.Credentials.Email != "user@example.com" || cfg.Credentials.Password != "hunter2" {
		t.Errorf("Credentials = %+v, want values from environment", cfg.Credentials)
	}
}

func TestLoad_EnvOverrideUnderscoreKeys(t *testing.T) {
	t.Setenv("SLACKMOJI_CATALOG_BASE_URL", "https://mirror.example.com")
	t.Setenv("SLACKMOJI_SLACK_SYNC_BATCH_SIZE", "42")
	t.Setenv("SLACKMOJI_SLACK_RETRY_RATE_LIMIT", "false")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Catalog.BaseURL != "https://mirror.example.com" {
		t.Errorf("Catalog.BaseURL = %q, want env override", cfg.Catalog.BaseURL)
	}
	if cfg.Slack.SyncBatchSize != 42 {
		t.Errorf("Slack.SyncBatchSize = %d, want env override 42", cfg.Slack.SyncBatchSize)
	}
	if cfg.Slack.RetryRateLimit {
		t.Error("Slack.RetryRateLimit = true, want env override false")
	}
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("SLACKMOJI_LOG_LEVEL", "warn")

	flags := SetupFlags()
	if err := flags.Parse([]string{"--log.level=error", "--db=/tmp/ledger.db", "https://x.slack.com"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want flag to beat env", cfg.Log.Level)
	}
	if cfg.Database.Path != "/tmp/ledger.db" {
		t.Errorf("Database.Path = %q, want --db value", cfg.Database.Path)
	}
}
