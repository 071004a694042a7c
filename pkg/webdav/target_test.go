package webdav

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDirectory(t *testing.T) {
	a := assert.New(t)
	a.False(IsDirectory("https://x/dav/a.json"))
	a.True(IsDirectory("https://x/dav/"))
	a.True(IsDirectory("https://x"))
	a.True(IsDirectory("https://x/dav/?token=1"))
	a.False(IsDirectory("https://x/dav?token=/"))
	a.True(IsDirectory("%zz/"))
	a.False(IsDirectory("%zz"))
}

func TestEnsureSlash(t *testing.T) {
	a := assert.New(t)
	a.Equal("https://x/dav/", EnsureSlash("https://x/dav"))
	a.Equal("https://x/dav/", EnsureSlash("https://x/dav/"))
	a.Equal("/", EnsureSlash(""))
}

func TestBuildDirURL(t *testing.T) {
	a := assert.New(t)

	cases := map[string]string{
		"https://x/dav/":         "https://x/dav/QuickTabNavigator/",
		"https://x/dav":          "https://x/dav/QuickTabNavigator/",
		"https://x":              "https://x/QuickTabNavigator/",
		"https://x/a%20b":        "https://x/a%20b/QuickTabNavigator/",
		"https://x/dav/?token=1": "https://x/dav/QuickTabNavigator/?token=1",
		"https://x/dav?token=1":  "https://x/dav/QuickTabNavigator/?token=1",
	}
	for base, expected := range cases {
		res, err := BuildDirURL(base, "QuickTabNavigator")
		a.NoError(err)
		a.Equal(expected, res, base)
	}

	res, err := BuildDirURL("https://x/dav/", "/nested/")
	a.NoError(err)
	a.Equal("https://x/dav/nested/", res)

	_, err = BuildDirURL("://bad", "a")
	a.Error(err)
}

func TestJoinURL(t *testing.T) {
	a := assert.New(t)

	res, err := joinURL("https://x/dav/QuickTabNavigator/?q=1", "backup_20240101120000.json")
	a.NoError(err)
	a.Equal("https://x/dav/QuickTabNavigator/backup_20240101120000.json?q=1", res)

	res, err = joinURL("https://x/a%20b/", "backup_20240101120000.json")
	a.NoError(err)
	a.Equal("https://x/a%20b/backup_20240101120000.json", res)

	_, err = joinURL("://bad", "a")
	a.Error(err)
}

func TestSplitTarget(t *testing.T) {
	a := assert.New(t)

	root, resource, query, err := splitTarget("https://user@x:8443/a%20b/c.json?q=1")
	a.NoError(err)
	a.Equal("https://user@x:8443/", root)
	a.Equal("/a b/c.json", resource)
	a.Equal("q=1", query)

	root, resource, _, err = splitTarget("https://x")
	a.NoError(err)
	a.Equal("https://x/", root)
	a.Equal("/", resource)

	_, _, _, err = splitTarget("/relative/only")
	a.Error(err)
}

func TestIsHTTPS(t *testing.T) {
	a := assert.New(t)
	a.True(IsHTTPS("https://x/"))
	a.True(IsHTTPS("HTTPS://x/"))
	a.False(IsHTTPS("http://x/"))
	a.False(IsHTTPS("x/"))
	a.False(IsHTTPS("://bad"))
}

func TestBackupFileName(t *testing.T) {
	a := assert.New(t)
	ts := time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local)
	a.Equal("backup_20241231235959.json", BackupFileName(ts))
	a.Regexp(backupNamePattern, BackupFileName(time.Now()))
}

func TestClient_EnsureAppDir(t *testing.T) {
	a := assert.New(t)
	rec := &recorder{}
	server := newDAVServer(rec.wrap)
	defer server.Close()
	client := newTestClient(nil)

	dir, err := client.EnsureAppDir(context.Background(), server.URL+"/dav/", Config{})
	require.NoError(t, err)
	a.Equal(server.URL+"/dav/QuickTabNavigator/", dir)
	a.Equal([]string{"PROPFIND", "MKCOL"}, rec.methods())

	// existing directory is not created again
	dir, err = client.EnsureAppDir(context.Background(), server.URL+"/dav", Config{})
	require.NoError(t, err)
	a.Equal(server.URL+"/dav/QuickTabNavigator/", dir)
	a.Equal([]string{"PROPFIND", "MKCOL", "PROPFIND"}, rec.methods())
}

func TestClient_EnsureAppDir_MkcolFailure(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})))
	defer server.Close()

	dir, err := newTestClient(nil).EnsureAppDir(context.Background(), server.URL+"/", Config{})
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/QuickTabNavigator/", dir)
	assert.Equal(t, []string{"PROPFIND", "MKCOL"}, rec.methods())
}

func TestClient_EnsureAppDir_CustomName(t *testing.T) {
	server := newDAVServer(nil)
	defer server.Close()

	client := NewClient(newTestClient(nil).http, testLogger(), nil, "backups")
	dir, err := client.EnsureAppDir(context.Background(), server.URL+"/dav/", Config{})
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/dav/backups/", dir)
}

func TestClient_EnsureAppDir_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	target := server.URL + "/"
	server.Close()

	_, err := newTestClient(nil).EnsureAppDir(context.Background(), target, Config{})
	assert.Error(t, err)
}
