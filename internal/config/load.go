package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix is the prefix for environment variable overrides. The first
// underscore after the prefix separates the config section from the key, so
// SLACKMOJI_LOG_LEVEL maps to log.level and SLACKMOJI_SLACK_SYNC_BATCH_SIZE
// to slack.sync_batch_size.
const envPrefix = "SLACKMOJI_"

// SetupFlags builds the CLI flag set. The single positional argument is the
// workspace base URL; everything else is an override for a config key.
func SetupFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("slackmoji", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: slackmoji [flags] <workspace-url>\n\n")
		fmt.Fprintf(os.Stderr, "Upload emojis from slackmojis.com to a Slack workspace.\n\n")
		flags.PrintDefaults()
	}

	flags.String("config", "", "path to a TOML config file")
	flags.String("db", "", "path to the ledger database (overrides database.path)")
	flags.String("log.level", "info", "log level (debug, info, warn, error)")
	flags.String("log.format", "text", "log format (text, json)")

	return flags
}

// Load builds the runtime configuration by layering, in increasing priority:
// defaults, the TOML config file (when present), SLACKMOJI_* environment
// variables, and command line flags. The workspace URL is taken from the
// first positional argument and credentials from SLACK_EMAIL/SLACK_PASSWORD.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// Only the first underscore is a section separator; the rest belong to
	// the key itself (e.g. sync_batch_size). Every section is a single word,
	// so splitting once is unambiguous.
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// --db is shorthand for database.path
	if flags != nil {
		if db, _ := flags.GetString("db"); db != "" {
			cfg.Database.Path = db
		}
		cfg.Workspace = flags.Arg(0)
	}

	cfg.Credentials = Credentials{
		Email:    os.Getenv("SLACK_EMAIL"),
		Password: os.Getenv("SLACK_PASSWORD"),
	}

	return &cfg, nil
}
