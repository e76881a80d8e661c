// Command slackmoji imports custom emoji from slackmojis.com into a Slack
// workspace, keeping a local ledger so re-runs only upload what is new.
//
//	SLACK_EMAIL=me@example.com SLACK_PASSWORD=... slackmoji https://myteam.slack.com
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/shareef12/slackmoji-uploader/internal/app"
	"github.com/shareef12/slackmoji-uploader/internal/config"
	"github.com/shareef12/slackmoji-uploader/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "slackmoji: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is a convenience for local use; absence is not an error.
	_ = godotenv.Load()

	flags := config.SetupFlags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	logging.Setup(cfg.Log, cfg.Telemetry.Enabled)

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, runErr := a.Run(ctx)

	// Close with a fresh context so a Ctrl-C that ended the run does not also
	// abort the telemetry flush and database close.
	if err := a.Close(context.Background()); err != nil {
		slog.Warn("closing resources", "error", err)
	}
	if runErr != nil {
		return runErr
	}

	// Per-item failures are reported in the stats but never fail the run.
	slog.Info("import finished",
		"synced", stats.Synced,
		"uploaded", stats.Uploaded,
		"already_present", stats.AlreadyPresent,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return nil
}
