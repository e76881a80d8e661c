package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Contains reports whether name has already been recorded.
func (r *Repository) Contains(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emojis WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying name %q: %w", name, err)
	}
	return n > 0, nil
}

// ContainsURL reports whether an entry was recorded for the given source URL.
// Lets re-runs skip a catalog link without re-downloading it.
func (r *Repository) ContainsURL(ctx context.Context, url string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emojis WHERE source_url = ?`, url).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying source url %q: %w", url, err)
	}
	return n > 0, nil
}

// ContainsHash reports whether an entry with the given content hash exists.
// Catches the same image published under two different catalog names.
func (r *Repository) ContainsHash(ctx context.Context, hash []byte) (bool, error) {
	if len(hash) == 0 {
		return false, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emojis WHERE content_hash = ?`, hash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying content hash: %w", err)
	}
	return n > 0, nil
}

// Record inserts an entry. Recording a name that already exists is a no-op,
// not an error.
func (r *Repository) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO emojis (id, name, source_url, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, e.ID, e.Name, e.SourceURL, e.ContentHash, e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording emoji %q: %w", e.Name, err)
	}
	return nil
}

// UniqueName returns base if it is unrecorded, or the first base0..base999
// that is. Deterministic for a given ledger state.
func (r *Repository) UniqueName(ctx context.Context, base string) (string, error) {
	taken, err := r.Contains(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 0; i < 1000; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		taken, err := r.Contains(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("unable to find unique emoji name for %q", base)
}

// Count returns the number of recorded entries.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emojis`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting emojis: %w", err)
	}
	return n, nil
}
