package webdav

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/request"
	xwebdav "golang.org/x/net/webdav"
)

const (
	testRealm = "qtn@test"
	testNonce = "dcd98b7102dd2f0e8b11d0f600bfb0c093"
)

func testLogger() logging.Logger {
	return logging.NewWriterLogger(logging.LevelDebug, io.Discard)
}

func newTestClient(settings SettingsPorter) *Client {
	return NewClient(request.NewClient(request.WithTimeout(10*time.Second)), testLogger(), settings, "")
}

// recorder keeps the method, authorization and body of every request a test server sees.
type recorder struct {
	mu       sync.Mutex
	requests []recorded
}

type recorded struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

func (r *recorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(strings.NewReader(string(body)))

		r.mu.Lock()
		r.requests = append(r.requests, recorded{
			Method:        req.Method,
			Path:          req.URL.RequestURI(),
			Authorization: req.Header.Get("Authorization"),
			Body:          string(body),
		})
		r.mu.Unlock()

		next.ServeHTTP(w, req)
	})
}

func (r *recorder) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.requests...)
}

func (r *recorder) methods() []string {
	var res []string
	for _, req := range r.all() {
		res = append(res, req.Method)
	}
	return res
}

// digestOnly accepts requests carrying a valid Digest answer for username/password and
// challenges everything else.
func digestOnly(username, password string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !validDigest(req, username, password) {
			w.Header().Add("WWW-Authenticate",
				`Digest realm="`+testRealm+`", qop="auth,auth-int", nonce="`+testNonce+`", opaque="5ccc069c403ebaf9f0171e9517f40e41"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, req)
	})
}

func validDigest(req *http.Request, username, password string) bool {
	auth := req.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Digest ") {
		return false
	}

	params := ParseChallenge(auth)
	if params["username"] != username || params["uri"] != req.URL.RequestURI() || params["nc"] != digestNonceCount {
		return false
	}

	server := Challenge{"realm": testRealm, "nonce": testNonce, "qop": "auth"}
	return params["response"] == digestResponse(req.Method, params["uri"], username, password, params["cnonce"], server)
}

// newDAVServer starts an in-memory WebDAV server mounted at /dav/.
func newDAVServer(wrap func(http.Handler) http.Handler) *httptest.Server {
	handler := &xwebdav.Handler{
		Prefix:     "/dav",
		FileSystem: xwebdav.NewMemFS(),
		LockSystem: xwebdav.NewMemLS(),
	}

	if wrap == nil {
		return httptest.NewServer(handler)
	}
	return httptest.NewServer(wrap(handler))
}

type fakePorter struct {
	exported string
	imported []string
	err      error
}

func (f *fakePorter) ExportJSON(ctx context.Context) (string, error) {
	return f.exported, f.err
}

func (f *fakePorter) ImportJSON(ctx context.Context, json string) error {
	f.imported = append(f.imported, json)
	return f.err
}
