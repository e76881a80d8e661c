package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
)

// ErrUnavailable indicates the catalog site could not be fetched or its page
// structure was not recognized. Fatal for the run.
var ErrUnavailable = errors.New("catalog unavailable")

var (
	// Download links look like /emojis/1739-royals/download. The slug holds
	// the numeric id and the emoji name.
	emojiLinkRe = regexp.MustCompile(`/emojis/([0-9]+)-([-0-9a-zA-Z_']+)/download`)

	categoryLinkRe = regexp.MustCompile(`href="(/categories/[^"]+)"`)
)

// Client scrapes emoji download links from slackmojis.com.
type Client struct {
	baseURL         string
	hc              *http.Client
	crawlCategories bool
}

func New(baseURL string, hc *http.Client, crawlCategories bool) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: baseURL, hc: hc, crawlCategories: crawlCategories}
}

// Emojis fetches the catalog once and returns every emoji found, in page
// order, deduplicated by download link. The homepage failing is fatal; a
// category page failing is logged and skipped.
func (c *Client) Emojis(ctx context.Context) ([]Emoji, error) {
	body, err := c.fetchPage(ctx, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	seen := make(map[string]struct{})
	emojis := c.parsePage(body, seen)
	if len(emojis) == 0 {
		return nil, fmt.Errorf("%w: no emoji links found on %s", ErrUnavailable, c.baseURL)
	}

	if c.crawlCategories {
		for _, m := range categoryLinkRe.FindAllSubmatch(body, -1) {
			page := c.baseURL + string(m[1])

			slog.Debug("crawling catalog category", "url", page)
			pageBody, err := c.fetchPage(ctx, page)
			if err != nil {
				slog.Warn("skipping catalog category", "url", page, "error", err)
				continue
			}
			emojis = append(emojis, c.parsePage(pageBody, seen)...)
		}
	}

	return emojis, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) parsePage(body []byte, seen map[string]struct{}) []Emoji {
	var emojis []Emoji

	for _, m := range emojiLinkRe.FindAllSubmatch(body, -1) {
		link := c.baseURL + string(m[0])
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}

		name := Sanitize(string(m[2]))
		if name == "" {
			slog.Warn("skipping emoji with unusable name", "url", link)
			continue
		}

		emojis = append(emojis, Emoji{
			Name:      name,
			SourceURL: link,
			LocalID:   string(m[1]),
		})
	}

	return emojis
}
