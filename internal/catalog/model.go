package catalog

// Emoji is one catalog listing parsed from slackmojis.com. Immutable once
// created.
type Emoji struct {
	// Name is the sanitized, Slack-legal emoji name derived from the
	// download link slug.
	Name string
	// SourceURL is the absolute download link for the image.
	SourceURL string
	// LocalID is the numeric id slackmojis.com assigns to the emoji.
	LocalID string
}
