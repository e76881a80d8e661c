package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

var (
	// ErrDownload wraps any per-item failure to fetch or prepare an image.
	// Never fatal for the run; the orchestrator skips the item.
	ErrDownload = errors.New("emoji download failed")

	// ErrUnsupportedFormat indicates the image is in a format Slack does not
	// accept and that cannot be converted.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// maxImageSize caps how much of an image response is read. Slack rejects
// emoji larger than this anyway.
const maxImageSize = 1 << 20 // 1MiB

// Fetcher downloads emoji images and converts them into a Slack-accepted
// raster format.
type Fetcher struct {
	hc         *http.Client
	rasterSize int
}

// NewFetcher returns a Fetcher. The client must follow redirects: catalog
// download links redirect to the real image path, and the emoji's name and
// extension can only be read off the final URL.
func NewFetcher(hc *http.Client, rasterSize int) *Fetcher {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Fetcher{hc: hc, rasterSize: rasterSize}
}

// Fetch downloads the image behind url and returns it as an upload-ready
// Asset. All errors wrap ErrDownload.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: %s", ErrDownload, url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrDownload, url, err)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrDownload, url, maxImageSize)
	}

	// The catalog link is a redirect; the filename is only known after
	// following it.
	final := resp.Request.URL.Path
	base := path.Base(final)
	ext := strings.ToLower(path.Ext(base))
	name := strings.TrimSuffix(base, path.Ext(base))

	asset, err := f.prepare(name, ext, data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %s: %w", ErrDownload, base, err)
		}
		return nil, fmt.Errorf("%w: converting %s: %v", ErrDownload, base, err)
	}

	return asset, nil
}
