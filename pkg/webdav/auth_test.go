package webdav

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestBasicAuthHeader(t *testing.T) {
	a := assert.New(t)
	a.Empty(BasicAuthHeader(Config{}))
	a.Equal("Basic dXNlcjpwYXNz", BasicAuthHeader(Config{Username: "user", Password: "pass"}))
	a.Equal("Basic dXNlcjo=", BasicAuthHeader(Config{Username: "user"}))
	a.Equal("Basic OnBhc3M=", BasicAuthHeader(Config{Password: "pass"}))
	a.Equal("Basic 55So5oi3OuWvhueggQ==", BasicAuthHeader(Config{Username: "用户", Password: "密码"}))
}

func TestClient_RequestWithAuth_Anonymous(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec.wrap(okHandler()))
	defer server.Close()

	resp, err := newTestClient(nil).RequestWithAuth(context.Background(), "GET", server.URL+"/a.json", nil, nil, Config{URL: server.URL})
	require.NoError(t, err)
	resp.Body.Close()

	requests := rec.all()
	require.Len(t, requests, 1)
	assert.Empty(t, requests[0].Authorization)
}

func TestClient_RequestWithAuth_Basic(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec.wrap(okHandler()))
	defer server.Close()

	header := http.Header{"Depth": {"1"}}
	resp, err := newTestClient(nil).RequestWithAuth(context.Background(), "PROPFIND", server.URL, header, nil, Config{Username: "user", Password: "pass"})
	require.NoError(t, err)
	resp.Body.Close()

	requests := rec.all()
	require.Len(t, requests, 1)
	assert.Equal(t, "Basic dXNlcjpwYXNz", requests[0].Authorization)
	// caller's header is not modified
	assert.Empty(t, header.Get("Authorization"))
}

func TestClient_RequestWithAuth_DigestRetry(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec.wrap(digestOnly("Mufasa", "Circle Of Life", okHandler())))
	defer server.Close()

	cfg := Config{Username: "Mufasa", Password: "Circle Of Life"}
	resp, err := newTestClient(nil).RequestWithAuth(context.Background(), "PUT", server.URL+"/dir/a.json?v=1", nil, []byte(`{"a":1}`), cfg)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))

	requests := rec.all()
	require.Len(t, requests, 2)
	assert.Equal(t, "Basic TXVmYXNhOkNpcmNsZSBPZiBMaWZl", requests[0].Authorization)
	assert.Contains(t, requests[1].Authorization, "Digest ")
	assert.Equal(t, "PUT", requests[1].Method)
	assert.Equal(t, `{"a":1}`, requests[0].Body)
	assert.Equal(t, `{"a":1}`, requests[1].Body)
}

func TestClient_RequestWithAuth_SingleRetry(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec.wrap(digestOnly("Mufasa", "Circle Of Life", okHandler())))
	defer server.Close()

	resp, err := newTestClient(nil).RequestWithAuth(context.Background(), "GET", server.URL, nil, nil, Config{Username: "Mufasa", Password: "wrong"})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Len(t, rec.all(), 2)
}

func TestClient_RequestWithAuth_NoDigestChallenge(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("WWW-Authenticate", `Basic realm="dav"`)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("denied"))
	})))
	defer server.Close()

	resp, err := newTestClient(nil).RequestWithAuth(context.Background(), "GET", server.URL, nil, nil, Config{Username: "u", Password: "p"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, `Basic realm="dav"`, resp.Header.Get("WWW-Authenticate"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "denied", string(body))
	assert.Len(t, rec.all(), 1)
}

func TestClient_RequestWithAuth_MultipleChallenges(t *testing.T) {
	rec := &recorder{}
	inner := digestOnly("u", "p", okHandler())
	server := httptest.NewServer(rec.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("WWW-Authenticate", `Basic realm="dav"`)
		inner.ServeHTTP(w, r)
	})))
	defer server.Close()

	resp, err := newTestClient(nil).RequestWithAuth(context.Background(), "GET", server.URL, nil, nil, Config{Username: "u", Password: "p"})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, rec.all(), 2)
}

func TestClient_RequestWithAuth_NetworkError(t *testing.T) {
	server := httptest.NewServer(okHandler())
	target := server.URL
	server.Close()

	_, err := newTestClient(nil).RequestWithAuth(context.Background(), "GET", target, nil, nil, Config{})
	assert.Error(t, err)
}
