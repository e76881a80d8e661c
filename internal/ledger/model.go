package ledger

import "time"

// Entry records one emoji name confirmed present in the Slack workspace.
// Entries are insert-only and never mutated.
type Entry struct {
	ID          string
	Name        string
	SourceURL   string
	ContentHash []byte
	CreatedAt   time.Time
}
