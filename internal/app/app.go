package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shareef12/slackmoji-uploader/internal/catalog"
	"github.com/shareef12/slackmoji-uploader/internal/config"
	"github.com/shareef12/slackmoji-uploader/internal/database"
	"github.com/shareef12/slackmoji-uploader/internal/image"
	"github.com/shareef12/slackmoji-uploader/internal/ledger"
	"github.com/shareef12/slackmoji-uploader/internal/slack"
	"github.com/shareef12/slackmoji-uploader/internal/telemetry"
	"github.com/shareef12/slackmoji-uploader/internal/uploader"
)

// Version is reported in telemetry resources.
const Version = "0.2.0"

// App owns every long-lived resource for a run: the ledger database, the
// telemetry provider, and the wired uploader.
type App struct {
	Config    *config.Config
	DB        *database.DB
	Uploader  *uploader.Uploader
	Telemetry *telemetry.Telemetry
}

func New(cfg *config.Config) (*App, error) {
	tel := telemetry.Noop()
	if cfg.Telemetry.Enabled {
		var err error
		tel, err = telemetry.Init(cfg.Telemetry, Version)
		if err != nil {
			return nil, fmt.Errorf("initializing telemetry: %w", err)
		}
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = DefaultLedgerPath(cfg.Workspace)
	}
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging ledger database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	repo := ledger.NewRepository(db.DB)

	cat := catalog.New(cfg.Catalog.BaseURL, &http.Client{
		Timeout:   cfg.Catalog.Timeout,
		Transport: telemetry.WrapTransport(nil, cfg.Telemetry.Enabled),
	}, cfg.Catalog.CrawlCategories)

	fetcher := image.NewFetcher(&http.Client{
		Timeout:   cfg.Image.Timeout,
		Transport: telemetry.WrapTransport(nil, cfg.Telemetry.Enabled),
	}, cfg.Image.RasterSize)

	// The Slack session needs its own client: a cookie jar for the login
	// session, and no automatic redirect following so the login flow can
	// inspect each hop.
	slackHC, err := slack.NewHTTPClient()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	slackHC.Timeout = cfg.Slack.Timeout
	slackHC.Transport = telemetry.WrapTransport(nil, cfg.Telemetry.Enabled)

	session, err := slack.New(cfg.Workspace, slackHC)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	up := uploader.New(uploader.Options{
		Credentials:    cfg.Credentials,
		SyncBatchSize:  cfg.Slack.SyncBatchSize,
		RecordTaken:    cfg.Slack.RecordTaken,
		RetryRateLimit: cfg.Slack.RetryRateLimit,
	}, session, cat, fetcher, repo)

	return &App{
		Config:    cfg,
		DB:        db,
		Uploader:  up,
		Telemetry: tel,
	}, nil
}

// Run performs one full import against the configured workspace.
func (a *App) Run(ctx context.Context) (uploader.Stats, error) {
	return a.Uploader.Run(ctx)
}

func (a *App) Close(ctx context.Context) error {
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		return err
	}
	return a.DB.Close()
}

// DefaultLedgerPath derives a workspace-scoped ledger file, so runs against
// different workspaces never share dedup state.
func DefaultLedgerPath(workspaceURL string) string {
	name := "default"
	if u, err := url.Parse(workspaceURL); err == nil && u.Host != "" {
		name = strings.Split(u.Host, ".")[0]
	}
	return fmt.Sprintf(".slackmoji.%s.db", name)
}
