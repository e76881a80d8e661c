package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := Defaults()
	cfg.Workspace = "https://myteam.slack.com"
	cfg.Credentials = Credentials{Email: "user@example.com", Password: "hunter2"}
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
}

func TestValidate_MissingWorkspace(t *testing.T) {
	cfg := validConfig()
	cfg.Workspace = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for missing workspace")
	}
	if !strings.Contains(err.Error(), "workspace base URL") {
		t.Fatalf("expected error about workspace URL, got: %v", err)
	}
}

func TestValidate_BadWorkspaceScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Workspace = "ftp://myteam.slack.com"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for non-http scheme")
	}
	if !strings.Contains(err.Error(), "http(s)") {
		t.Fatalf("expected error about scheme, got: %v", err)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Credentials.Password = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "SLACK_EMAIL and SLACK_PASSWORD") {
		t.Fatalf("expected error about credentials, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Workspace = ""
	cfg.Log.Level = "loud"
	cfg.Slack.SyncBatchSize = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"workspace", "log.level", "sync_batch_size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected joined error to mention %q, got: %v", want, err)
		}
	}
}

func TestValidate_TelemetryOnlyWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Enabled = false
	cfg.Telemetry.Protocol = "carrier-pigeon" // should not matter when disabled
	if err := Validate(cfg); err != nil {
		t.Fatalf("disabled telemetry should skip validation: %v", err)
	}

	cfg.Telemetry.Enabled = true
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for bad telemetry protocol")
	}
	if !strings.Contains(err.Error(), "telemetry.protocol") {
		t.Fatalf("expected error about protocol, got: %v", err)
	}
}
