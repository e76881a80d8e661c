package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shareef12/slackmoji-uploader/internal/image"
)

// apiResponse is the common envelope of the web-session emoji endpoints.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`

	Emoji []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"emoji"`
	Paging struct {
		Page  int `json:"page"`
		Pages int `json:"pages"`
	} `json:"paging"`
}

// SubmitEmoji adds one custom emoji to the workspace through the same
// endpoint the Customize screen posts to. A name collision returns
// ErrNameTaken and a rejected payload ErrBadFormat, both non-fatal. HTTP 429
// returns a *RateLimitedError carrying the server's Retry-After.
func (c *Client) SubmitEmoji(ctx context.Context, name string, asset *image.Asset) error {
	if err := c.requireSession(); err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for field, value := range map[string]string{
		"mode":  "data",
		"name":  name,
		"token": c.token,
	} {
		if err := mw.WriteField(field, value); err != nil {
			return errors.Wrapf(err, "writing form field %q", field)
		}
	}

	fw, err := mw.CreateFormFile("image", asset.Name+extFor(asset.ContentType))
	if err != nil {
		return errors.Wrap(err, "creating image form file")
	}
	if _, err := fw.Write(asset.Data); err != nil {
		return errors.Wrap(err, "writing image payload")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "finalizing multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/emoji.add", &body)
	if err != nil {
		return errors.Wrap(err, "building emoji.add request")
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	r, err := c.doAPI(req)
	if err != nil {
		return err
	}

	if !r.OK {
		switch r.Error {
		case "error_name_taken", "error_name_taken_i18n":
			return ErrNameTaken
		case "error_bad_format":
			return ErrBadFormat
		default:
			return errors.Errorf("emoji.add failed: %s", r.Error)
		}
	}
	return nil
}

// ListEmoji pages through the workspace's existing custom emoji and returns
// their names. Used to seed the ledger so re-runs and pre-populated
// workspaces never collide.
func (c *Client) ListEmoji(ctx context.Context, batchSize int) ([]string, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	if batchSize < 1 {
		batchSize = 100
	}

	var names []string
	for page := 1; ; page++ {
		v := url.Values{
			"page":  {strconv.Itoa(page)},
			"count": {strconv.Itoa(batchSize)},
			"token": {c.token},
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.endpoint+"/api/emoji.adminList", strings.NewReader(v.Encode()))
		if err != nil {
			return nil, errors.Wrap(err, "building emoji.adminList request")
		}
		req.Header.Set("User-Agent", browserUA)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		r, err := c.doAPI(req)
		if err != nil {
			return nil, err
		}
		if !r.OK {
			return nil, errors.Errorf("emoji.adminList failed: %s", r.Error)
		}

		for _, e := range r.Emoji {
			names = append(names, e.Name)
		}

		if r.Paging.Page >= r.Paging.Pages {
			break
		}
	}

	return names, nil
}

func (c *Client) requireSession() error {
	switch c.state {
	case stateClosed:
		return ErrClosed
	case stateLoggedOut:
		return ErrNotAuthenticated
	}
	return nil
}

func (c *Client) doAPI(req *http.Request) (*apiResponse, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "calling %s", req.URL.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitedError{RetryAfter: retryAfter(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%s returned %s", req.URL.Path, resp.Status)
	}

	var r apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, errors.Wrapf(err, "decoding %s response", req.URL.Path)
	}
	return &r, nil
}

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 1 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
}

func extFor(contentType string) string {
	switch contentType {
	case "image/gif":
		return ".gif"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".png"
	}
}
