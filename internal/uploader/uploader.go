// Package uploader sequences a run: fetch the catalog, filter against the
// ledger, download and convert each new emoji, and submit it through the
// Slack session. Strictly sequential; one browser-like session, one request
// in flight at a time.
package uploader

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shareef12/slackmoji-uploader/internal/catalog"
	"github.com/shareef12/slackmoji-uploader/internal/config"
	"github.com/shareef12/slackmoji-uploader/internal/image"
	"github.com/shareef12/slackmoji-uploader/internal/ledger"
	"github.com/shareef12/slackmoji-uploader/internal/slack"
	"github.com/shareef12/slackmoji-uploader/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Session is the narrow capability surface the orchestrator needs from the
// Slack automation backend, so the mechanized-HTTP implementation can be
// swapped without touching orchestration logic.
type Session interface {
	Authenticate(ctx context.Context, email, password string) error
	SubmitEmoji(ctx context.Context, name string, asset *image.Asset) error
	ListEmoji(ctx context.Context, batchSize int) ([]string, error)
	Close() error
}

// Catalog lists the candidate emoji available for import.
type Catalog interface {
	Emojis(ctx context.Context) ([]catalog.Emoji, error)
}

// Fetcher downloads one emoji image as an upload-ready asset.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*image.Asset, error)
}

// Ledger is the persistent record of emoji already uploaded.
type Ledger interface {
	Contains(ctx context.Context, name string) (bool, error)
	ContainsURL(ctx context.Context, url string) (bool, error)
	ContainsHash(ctx context.Context, hash []byte) (bool, error)
	Record(ctx context.Context, e *ledger.Entry) error
	UniqueName(ctx context.Context, base string) (string, error)
}

// Stats summarizes one run.
type Stats struct {
	Synced         int // remote names seeded into the ledger
	Uploaded       int // emoji accepted by Slack this run
	AlreadyPresent int // name collisions treated as already uploaded
	Skipped        int // filtered out by the ledger before upload
	Failed         int // per-item download or upload failures
}

// Options tune a run. Credentials are handed over explicitly at
// construction; the uploader never consults the environment.
type Options struct {
	Credentials    config.Credentials
	SyncBatchSize  int
	RecordTaken    bool
	RetryRateLimit bool
}

type Uploader struct {
	opts    Options
	session Session
	catalog Catalog
	fetcher Fetcher
	ledger  Ledger
}

func New(opts Options, session Session, cat Catalog, fetcher Fetcher, led Ledger) *Uploader {
	return &Uploader{
		opts:    opts,
		session: session,
		catalog: cat,
		fetcher: fetcher,
		ledger:  led,
	}
}

// Run executes one full import. Authentication and catalog failures are
// fatal; everything per-item is logged and skipped. The session is closed on
// every exit path.
func (u *Uploader) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	defer func() {
		if err := u.session.Close(); err != nil {
			slog.WarnContext(ctx, "closing slack session", "error", err)
		}
	}()

	authCtx, end := telemetry.StartSpan(ctx, "uploader.Authenticate")
	err := u.session.Authenticate(authCtx, u.opts.Credentials.Email, u.opts.Credentials.Password)
	end()
	if err != nil {
		return stats, fmt.Errorf("authenticating to slack: %w", err)
	}

	if err := u.syncRemote(ctx, &stats); err != nil {
		return stats, fmt.Errorf("syncing workspace emoji: %w", err)
	}

	fetchCtx, end := telemetry.StartSpan(ctx, "uploader.FetchCatalog")
	records, err := u.catalog.Emojis(fetchCtx)
	end()
	if err != nil {
		return stats, fmt.Errorf("fetching catalog: %w", err)
	}
	slog.InfoContext(ctx, "fetched catalog", "emojis", len(records))

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := u.processOne(ctx, rec, &stats); err != nil {
			return stats, err
		}
	}

	slog.InfoContext(ctx, "run complete",
		"uploaded", stats.Uploaded,
		"already_present", stats.AlreadyPresent,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, nil
}

// syncRemote seeds the ledger with every emoji name already in the
// workspace, so names uploaded out of band (or before the ledger existed)
// are never re-attempted.
func (u *Uploader) syncRemote(ctx context.Context, stats *Stats) error {
	ctx, end := telemetry.StartSpan(ctx, "uploader.SyncRemote")
	defer end()

	names, err := u.session.ListEmoji(ctx, u.opts.SyncBatchSize)
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := u.ledger.Record(ctx, &ledger.Entry{Name: name}); err != nil {
			return err
		}
	}
	stats.Synced = len(names)

	slog.InfoContext(ctx, "synchronized ledger with workspace", "remote_emojis", len(names))
	return nil
}

// processOne runs the ledger filter, download, and submit steps for a single
// catalog record. Only ledger errors and context cancellation propagate;
// download and upload problems are consumed into stats.
func (u *Uploader) processOne(ctx context.Context, rec catalog.Emoji, stats *Stats) error {
	ctx, end := telemetry.StartSpan(ctx, "uploader.Process",
		attribute.String("emoji.name", rec.Name),
		attribute.String("emoji.url", rec.SourceURL))
	defer end()

	log := slog.With("name", rec.Name, "url", rec.SourceURL)

	// A recorded source URL means this exact listing was handled by an
	// earlier run.
	seen, err := u.ledger.ContainsURL(ctx, rec.SourceURL)
	if err != nil {
		return err
	}
	if seen {
		stats.Skipped++
		return nil
	}

	asset, err := u.fetcher.Fetch(ctx, rec.SourceURL)
	if err != nil {
		log.WarnContext(ctx, "download failed, skipping emoji", "error", err)
		stats.Failed++
		return nil
	}

	sum := sha256.Sum256(asset.Data)
	dup, err := u.ledger.ContainsHash(ctx, sum[:])
	if err != nil {
		return err
	}
	if dup {
		log.DebugContext(ctx, "identical image already uploaded, skipping")
		stats.Skipped++
		return nil
	}

	// The catalog republishes popular images under recycled names. When the
	// name is taken but the bytes are new, upload under a numeric suffix
	// instead of dropping the emoji.
	name := rec.Name
	taken, err := u.ledger.Contains(ctx, name)
	if err != nil {
		return err
	}
	if taken {
		name, err = u.ledger.UniqueName(ctx, name)
		if err != nil {
			log.WarnContext(ctx, "no unique name available, skipping emoji", "error", err)
			stats.Failed++
			return nil
		}
		log = log.With("upload_name", name)
	}

	if err := u.submit(ctx, name, asset); err != nil {
		switch {
		case errors.Is(err, slack.ErrNameTaken):
			log.InfoContext(ctx, "emoji already present in workspace")
			stats.AlreadyPresent++
			if u.opts.RecordTaken {
				return u.ledger.Record(ctx, &ledger.Entry{Name: name, SourceURL: rec.SourceURL})
			}
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			log.WarnContext(ctx, "upload failed, skipping emoji", "error", err)
			stats.Failed++
			return nil
		}
	}

	log.InfoContext(ctx, "uploaded emoji")
	stats.Uploaded++
	return u.ledger.Record(ctx, &ledger.Entry{
		Name:        name,
		SourceURL:   rec.SourceURL,
		ContentHash: sum[:],
	})
}

// submit performs the upload, waiting out a single rate-limit response when
// configured. Slack presents a captcha after logout/login cycles, so waiting
// in place is the only safe reaction to a 429.
func (u *Uploader) submit(ctx context.Context, name string, asset *image.Asset) error {
	err := u.session.SubmitEmoji(ctx, name, asset)

	var rle *slack.RateLimitedError
	if errors.As(err, &rle) && u.opts.RetryRateLimit {
		slog.InfoContext(ctx, "rate limited, waiting before retry",
			"name", name, "retry_after", rle.RetryAfter)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rle.RetryAfter):
		}
		return u.session.SubmitEmoji(ctx, name, asset)
	}

	return err
}
