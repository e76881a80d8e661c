// Package slack drives a Slack workspace's web UI over a mechanized HTTP
// session: it logs in through the web sign-in form, captures the session
// cookie and the api_token embedded in the page boot data, and uses them to
// call the emoji endpoints the Customize screen uses. None of this is
// covered by Slack API compatibility guarantees; it can break whenever the
// web UI changes, which is why every layout assumption maps to ErrPageLayout.
package slack

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

// browserUA is sent on every request. Slack serves different markup (and
// silently refuses logins) for unrecognized user agents, and the login crumb
// hashes the UA string, so it must stay constant for the whole session.
const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/115.0"

// loginFailedFlash is the flash message Slack renders for bad credentials.
// Its presence is the only way to tell invalid credentials apart from a
// malformed login request.
var loginFailedFlash = []byte("Sorry, you entered an incorrect email address or password.")

// HTTPClient is the part of *http.Client the session needs. The client must
// carry a cookie jar and must NOT follow redirects: the login flow reads
// redirect responses directly.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type state int

const (
	stateLoggedOut state = iota
	stateLoggedIn
	stateClosed
)

// Client is a mechanized web session against one Slack workspace.
type Client struct {
	hc       HTTPClient
	endpoint string
	token    string
	state    state
}

// New returns a Client for the workspace at workspaceURL (e.g.
// https://myteam.slack.com). Call Authenticate before anything else.
func New(workspaceURL string, hc HTTPClient) (*Client, error) {
	if hc == nil {
		return nil, errors.New("must provide an http client")
	}

	u, err := url.Parse(workspaceURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid workspace url %q", workspaceURL)
	}
	if u.Host == "" {
		return nil, errors.Errorf("workspace url %q has no host", workspaceURL)
	}

	return &Client{
		hc:       hc,
		endpoint: strings.TrimSuffix(workspaceURL, "/"),
	}, nil
}

// NewHTTPClient builds an *http.Client suitable for New: cookie jar keyed by
// public suffix rules, redirects surfaced instead of followed.
func NewHTTPClient() (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "creating cookie jar")
	}

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

// Token returns the session api_token. Empty until Authenticate succeeds.
func (c *Client) Token() string { return c.token }

// Close tears down the session. Safe to call on every exit path, including
// before Authenticate; subsequent calls are no-ops.
func (c *Client) Close() error {
	c.token = ""
	c.state = stateClosed
	return nil
}

// drain reads and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
