package webdav

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/request"
	"github.com/studio-b12/gowebdav"
)

// BasicAuthHeader returns the Basic Authorization value for cfg, or "" when both
// username and password are empty.
func BasicAuthHeader(cfg Config) string {
	if cfg.Username == "" && cfg.Password == "" {
		return ""
	}

	return "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.Username+":"+cfg.Password))
}

// RequestWithAuth sends a request with Basic credentials. If the server answers 401 with a
// Digest challenge, the request is sent once more with a Digest Authorization header and
// that second response is returned whatever its status. Transport errors are returned as-is.
func (c *Client) RequestWithAuth(ctx context.Context, method, target string, header http.Header, body []byte, cfg Config) (*http.Response, error) {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	if basic := BasicAuthHeader(cfg); basic != "" {
		h.Set("Authorization", basic)
	}

	resp := c.send(ctx, method, target, h, body)
	if resp.Err != nil {
		return nil, resp.Err
	}

	if resp.Response.StatusCode != http.StatusUnauthorized {
		return resp.Response, nil
	}

	challenge, ok := digestChallenge(resp.Response.Header)
	if !ok {
		return resp.Response, nil
	}

	authorization, err := BuildDigestAuth(method, target, cfg.Username, cfg.Password, challenge)
	if err != nil {
		return resp.Response, nil
	}
	resp.Discard()

	c.l.Debug("Server requested Digest authentication for %s %s, retrying.", method, target)
	h = h.Clone()
	h.Set("Authorization", authorization)

	retry := c.send(ctx, method, target, h, body)
	if retry.Err != nil {
		return nil, retry.Err
	}

	return retry.Response, nil
}

func (c *Client) send(ctx context.Context, method, target string, h http.Header, body []byte) *request.Response {
	opts := []request.Option{
		request.WithContext(ctx),
		request.WithHeader(h),
		request.WithoutRedirect(),
	}

	if body == nil {
		return c.http.Request(method, target, nil, opts...)
	}

	opts = append(opts, request.WithContentLength(int64(len(body))))
	return c.http.Request(method, target, bytes.NewReader(body), opts...)
}

// digestChallenge picks the first WWW-Authenticate value offering Digest.
func digestChallenge(h http.Header) (Challenge, bool) {
	for _, v := range h.Values("WWW-Authenticate") {
		if IsDigestChallenge(v) {
			return ParseChallenge(v), true
		}
	}

	return nil, false
}

// authorizer negotiates credentials for the gowebdav transfers the same way RequestWithAuth
// does: Basic first, then a single Digest retry when a 401 carries a Digest challenge.
type authorizer struct {
	cfg Config
	// query is re-attached to every request, gowebdav only addresses paths.
	query string
	l     logging.Logger
}

func (a *authorizer) NewAuthenticator(body io.Reader) (gowebdav.Authenticator, io.Reader) {
	replay, err := replayable(body)
	return &negotiator{cfg: a.cfg, query: a.query, l: a.l, body: replay, bodyErr: err}, replay
}

// AddAuthenticator is a no-op, the negotiation is fixed.
func (a *authorizer) AddAuthenticator(string, gowebdav.AuthFactory) {}

// negotiator handles one gowebdav request, including its Digest retry.
type negotiator struct {
	cfg     Config
	query   string
	l       logging.Logger
	body    *bytes.Reader
	bodyErr error

	challenge Challenge
	retried   bool
}

func (n *negotiator) Authorize(c *http.Client, rq *http.Request, _ string) error {
	if n.bodyErr != nil {
		return n.bodyErr
	}

	// gowebdav has no option for its http.Client, a 3xx must reach the caller as is.
	c.CheckRedirect = keepRedirect
	if n.query != "" && rq.URL.RawQuery == "" {
		rq.URL.RawQuery = n.query
	}

	if n.challenge == nil {
		if basic := BasicAuthHeader(n.cfg); basic != "" {
			rq.Header.Set("Authorization", basic)
		}
		return nil
	}

	authorization, err := BuildDigestAuth(rq.Method, rq.URL.String(), n.cfg.Username, n.cfg.Password, n.challenge)
	if err != nil {
		return err
	}
	rq.Header.Set("Authorization", authorization)
	return nil
}

func (n *negotiator) Verify(_ *http.Client, rs *http.Response, path string) (bool, error) {
	if n.retried || rs.StatusCode != http.StatusUnauthorized {
		return false, nil
	}

	challenge, ok := digestChallenge(rs.Header)
	if !ok {
		return false, nil
	}

	if _, err := n.body.Seek(0, io.SeekStart); err != nil {
		return false, err
	}

	n.l.Debug("Server requested Digest authentication for %s, retrying.", path)
	n.challenge = challenge
	n.retried = true
	return true, nil
}

func (n *negotiator) Clone() gowebdav.Authenticator {
	clone := *n
	return &clone
}

func (n *negotiator) Close() error {
	return nil
}

// replayable buffers body so that it can be sent again on the Digest retry. A nil body
// becomes an empty reader.
func replayable(body io.Reader) (*bytes.Reader, error) {
	switch b := body.(type) {
	case nil:
		return bytes.NewReader(nil), nil
	case *bytes.Reader:
		return b, nil
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return bytes.NewReader(nil), err
	}
	return bytes.NewReader(content), nil
}

func keepRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}
