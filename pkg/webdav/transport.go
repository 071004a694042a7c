package webdav

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/request"
	"github.com/studio-b12/gowebdav"
)

// requestTransport sends the requests of a gowebdav client through request.Client, so that
// they share its timeout, TPS limit, TLS settings and request log.
type requestTransport struct {
	ctx    context.Context
	client request.Client
}

func (t *requestTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body io.Reader
	length := req.ContentLength
	if req.Body != nil && req.Body != http.NoBody {
		body = req.Body
		if length == 0 {
			// 长度未知
			length = -1
		}
	}

	resp := t.client.Request(req.Method, req.URL.String(), body,
		request.WithContext(t.ctx),
		request.WithHeader(req.Header),
		request.WithContentLength(length),
		request.WithoutRedirect(),
	)
	if resp.Err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, resp.Err
	}

	return resp.Response, nil
}

// splitTarget splits an absolute URL into the server root gowebdav is created with, the
// unescaped resource path and the raw query.
func splitTarget(target string) (root, resource, query string, err error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", "", "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", "", fmt.Errorf("webdav target %q is not an absolute URL", target)
	}

	resource = u.Path
	if resource == "" {
		resource = "/"
	}

	root = (&url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host, Path: "/"}).String()
	return root, resource, u.RawQuery, nil
}

// dav returns a gowebdav client for a single call against target, and the path of target
// on it. header is added to every request of the client.
func (c *Client) dav(ctx context.Context, target string, cfg Config, header http.Header) (*gowebdav.Client, string, error) {
	root, resource, query, err := splitTarget(target)
	if err != nil {
		return nil, "", err
	}

	client := gowebdav.NewAuthClient(root, &authorizer{cfg: cfg, query: query, l: c.l})
	client.SetTransport(&requestTransport{ctx: ctx, client: c.http})
	for key, values := range header {
		for _, v := range values {
			client.SetHeader(key, v)
		}
	}

	return client, resource, nil
}

// davStatus returns the HTTP status carried by a gowebdav error. ok is false for transport
// errors, which carry none.
func davStatus(err error) (status int, ok bool) {
	var se gowebdav.StatusError
	if errors.As(err, &se) {
		return se.Status, true
	}

	return 0, false
}
