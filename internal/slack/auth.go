package slack

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// loginForm holds the hidden inputs of the Slack sign-in form. The crumb is
// a CSRF token that also hashes the user agent; it must be posted back
// unchanged.
type loginForm struct {
	Crumb       string
	Redir       string
	Signin      string
	HasRemember string
}

// Authenticate logs in to the workspace as a web user and captures the
// session api_token. A live session cookie short-circuits the form login.
// Bad credentials return ErrInvalidCredentials; any page that does not match
// the known login flow returns an error wrapping ErrPageLayout. Both are
// fatal for a run.
func (c *Client) Authenticate(ctx context.Context, email, password string) error {
	if c.state == stateClosed {
		return ErrClosed
	}
	if email == "" || password == "" {
		return errors.New("both an email and password must be provided")
	}

	form, loggedIn, err := c.fetchLoginForm(ctx)
	if err != nil {
		return err
	}

	if !loggedIn {
		// Post credentials. Success is a 302 to the checkcookie endpoint;
		// a 200 means the login was refused.
		checkCookieURL, err := c.postLogin(ctx, email, password, form)
		if err != nil {
			return err
		}

		// checkcookie validates the fresh session cookie and bounces us back
		// to the workspace root. A 200 here means cookies did not stick.
		if err := c.expectRedirect(ctx, checkCookieURL, c.endpoint+"/"); err != nil {
			return errors.Wrap(err, "session cookie validation failed")
		}
	}

	token, err := c.fetchSessionToken(ctx)
	if err != nil {
		return err
	}

	c.token = token
	c.state = stateLoggedIn
	return nil
}

// fetchLoginForm GETs the workspace root. A 200 carries the sign-in form; a
// 302 means the cookie jar already holds a live session.
func (c *Client) fetchLoginForm(ctx context.Context) (loginForm, bool, error) {
	resp, err := c.getCtx(ctx, c.endpoint+"/")
	if err != nil {
		return loginForm{}, false, errors.Wrap(err, "fetching workspace login page")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		form, err := parseLoginForm(resp.Body)
		if err != nil {
			return loginForm{}, false, errors.Wrapf(ErrPageLayout, "login form: %v", err)
		}
		return form, false, nil

	case http.StatusFound:
		return loginForm{}, true, nil

	default:
		return loginForm{}, false, errors.Wrapf(ErrPageLayout, "unexpected status %s for login page", resp.Status)
	}
}

func (c *Client) postLogin(ctx context.Context, email, password string, form loginForm) (string, error) {
	v := url.Values{
		"crumb":        {form.Crumb},
		"email":        {email},
		"password":     {password},
		"redir":        {form.Redir},
		"signin":       {form.Signin},
		"has_remember": {form.HasRemember},
		"remember":     {"on"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(v.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "building login request")
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "posting login form")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusFound:
		loc := resp.Header.Get("Location")
		if !strings.Contains(loc, "checkcookie") {
			return "", errors.Wrapf(ErrPageLayout, "unexpected login redirect to %q", loc)
		}
		return loc, nil

	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", errors.Wrap(err, "reading failed login response")
		}
		if bytes.Contains(body, loginFailedFlash) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrapf(ErrPageLayout, "login refused without an error message")

	default:
		return "", errors.Wrapf(ErrPageLayout, "unexpected status %s when logging in", resp.Status)
	}
}

// expectRedirect GETs url and verifies it 302s to wantLocation.
func (c *Client) expectRedirect(ctx context.Context, url, wantLocation string) error {
	resp, err := c.getCtx(ctx, url)
	if err != nil {
		return errors.Wrapf(err, "fetching %q", url)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusFound {
		return errors.Wrapf(ErrPageLayout, "%q did not redirect (%s)", url, resp.Status)
	}
	if loc := resp.Header.Get("Location"); loc != wantLocation {
		return errors.Wrapf(ErrPageLayout, "%q redirected to %q, want %q", url, loc, wantLocation)
	}
	return nil
}

// Boot-data markers the api_token hides behind. The customize page has used
// both spellings over time.
var tokenMarkers = []string{`"api_token":"`, `api_token: "`}

// fetchSessionToken pulls the session api_token out of the customize/emoji
// page boot data.
func (c *Client) fetchSessionToken(ctx context.Context) (string, error) {
	resp, err := c.getCtx(ctx, c.endpoint+"/customize/emoji")
	if err != nil {
		return "", errors.Wrap(err, "fetching emoji customize page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(ErrPageLayout, "unexpected status %s for customize page", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading customize page")
	}

	for _, marker := range tokenMarkers {
		if token, ok := extractQuoted(body, marker); ok {
			return token, nil
		}
	}
	return "", errors.Wrap(ErrPageLayout, "api_token not found in page boot data")
}

// extractQuoted returns the text between the end of marker and the next
// double quote.
func extractQuoted(p []byte, marker string) (string, bool) {
	i := bytes.Index(p, []byte(marker))
	if i < 0 {
		return "", false
	}
	start := i + len(marker)

	end := bytes.IndexByte(p[start:], '"')
	if end < 0 {
		return "", false
	}
	return string(p[start : start+end]), true
}

// parseLoginForm tokenizes the sign-in page looking for the hidden input
// fields the login POST must echo back.
func parseLoginForm(r io.Reader) (loginForm, error) {
	var form loginForm

	t := html.NewTokenizer(r)
	for {
		tt := t.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		token := t.Token()
		if token.DataAtom != atom.Input {
			continue
		}

		attrs := make(map[string]string, len(token.Attr))
		for _, attr := range token.Attr {
			attrs[attr.Key] = attr.Val
		}

		switch attrs["name"] {
		case "crumb":
			form.Crumb = attrs["value"]
		case "redir":
			form.Redir = attrs["value"]
		case "signin":
			form.Signin = attrs["value"]
		case "has_remember":
			form.HasRemember = attrs["value"]
		}
	}

	if form.Crumb == "" {
		return loginForm{}, errors.New("no crumb hidden input in the page")
	}
	return form, nil
}

func (c *Client) getCtx(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)

	return c.hc.Do(req)
}
