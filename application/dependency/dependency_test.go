package dependency

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/cache"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/mocks/requestmock"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/request"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/util"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/webdav"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewWriterLogger(logging.LevelDebug, io.Discard)
}

func writeConf(t *testing.T, dir string) string {
	path := filepath.Join(dir, "conf.ini")
	content := "[WebDAV]\nAppDir = backups\nTimeout = 5\nTPSLimit = 5\nTPSBurst = 1\nInsecureSkipVerify = true\n\n" +
		"[Storage]\nCacheFile = " + filepath.Join(dir, "settings.bin") + "\nSyncFile = " + filepath.Join(dir, "sync.bin") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDependency_Singletons(t *testing.T) {
	a := assert.New(t)
	dir := t.TempDir()
	dep := NewDependency(
		WithConfigPath(writeConf(t, dir)),
		WithLogger(testLogger()),
		WithSyncKV(cache.NewMemoStore("", testLogger())),
	)

	a.Equal("backups", dep.ConfigProvider().WebDAV().AppDir)
	a.Same(dep.KV(), dep.KV())
	a.Same(dep.SettingStore(), dep.SettingStore())
	a.Same(dep.SettingsManager(), dep.SettingsManager())
	a.Same(dep.WebDAVClient(), dep.WebDAVClient())
	a.NotNil(dep.RequestClient())
}

func TestDependency_Shutdown(t *testing.T) {
	a := assert.New(t)
	dir := t.TempDir()
	ctx := context.Background()
	dep := NewDependency(
		WithConfigPath(writeConf(t, dir)),
		WithLogger(testLogger()),
		WithSyncKV(cache.NewMemoStore("", testLogger())),
	)

	// nothing used, nothing written
	a.NoError(NewDependency(WithLogger(testLogger())).Shutdown(ctx))

	require.NoError(t, dep.SettingStore().Set(ctx, "locale", "en"))
	require.NoError(t, dep.Shutdown(ctx))
	a.True(util.Exists(filepath.Join(dir, "settings.bin")))

	// a new dependency picks the persisted cache up
	restored := NewDependency(
		WithConfigPath(writeConf(t, dir)),
		WithLogger(testLogger()),
		WithSyncKV(cache.NewMemoStore("", testLogger())),
	)
	raw, ok := restored.SettingStore().Get(ctx, "locale")
	a.True(ok)
	a.JSONEq(`"en"`, string(raw))
}

func TestDependency_WithRequestClient(t *testing.T) {
	client := &requestmock.RequestMock{}
	dep := NewDependency(WithRequestClient(client))
	assert.Same(t, client, dep.RequestClient())
}

func TestDependency_ConfigPathNotSet(t *testing.T) {
	dep := NewDependency()
	assert.PanicsWithValue(t, ErrorConfigPathNotSet, func() {
		dep.ConfigProvider()
	})
}

func TestForkWithLogger(t *testing.T) {
	l := testLogger()
	dep := NewDependency(WithLogger(testLogger()))
	ctx := dep.ForkWithLogger(context.Background(), l)

	assert.Same(t, l, FromContext(ctx).Logger())
}

func TestForkWithLogger_WebDAVClient(t *testing.T) {
	a := assert.New(t)
	color.NoColor = true
	client := &requestmock.RequestMock{}
	client.On("Request", "HEAD", "https://dav.example.com/a.json", nil, mock.Anything).
		Return(&request.Response{Err: errors.New("connection refused")})

	base := &bytes.Buffer{}
	dep := NewDependency(
		WithConfigPath(writeConf(t, t.TempDir())),
		WithLogger(logging.NewWriterLogger(logging.LevelDebug, base)),
		WithSyncKV(cache.NewMemoStore("", testLogger())),
		WithRequestClient(client),
	)

	correlated := &bytes.Buffer{}
	ctx := dep.ForkWithLogger(context.Background(), logging.NewWriterLogger(logging.LevelDebug, correlated).CopyWithPrefix("[Cid: 1]"))
	forked := FromContext(ctx)
	a.NotSame(dep.WebDAVClient(), forked.WebDAVClient())
	a.Same(forked.WebDAVClient(), forked.WebDAVClient())

	res, err := forked.WebDAVClient().Test(ctx, webdav.Config{URL: "https://dav.example.com/a.json"})
	require.NoError(t, err)
	a.False(res.OK)
	a.Contains(correlated.String(), "[Cid: 1]")
	a.Contains(correlated.String(), "connection refused")
	a.NotContains(base.String(), "connection refused")
}
