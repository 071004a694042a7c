// Package webdav implements the settings backup client: HTTP Basic/Digest negotiation,
// app directory resolution, backup listing and the upload/download/restore operations.
package webdav

import (
	"context"
	"time"

	"github.com/QuickTabNavigator/QuickTabNavigator/application/constants"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/request"
)

// Config WebDAV 连接配置. URL may point to a single file or to a directory (trailing slash).
type Config struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SettingsExporter produces the settings snapshot uploaded as backup body.
type SettingsExporter interface {
	ExportJSON(ctx context.Context) (string, error)
}

// SettingsImporter consumes a downloaded settings snapshot.
type SettingsImporter interface {
	ImportJSON(ctx context.Context, json string) error
}

// SettingsPorter exports and imports settings snapshots.
type SettingsPorter interface {
	SettingsExporter
	SettingsImporter
}

// Client talks to a WebDAV server on behalf of a single caller-supplied Config per call.
// It keeps no authentication state between calls.
type Client struct {
	http     request.Client
	l        logging.Logger
	settings SettingsPorter
	appDir   string
	now      func() time.Time
}

// NewClient creates a backup client. An empty appDir falls back to constants.AppDirName.
func NewClient(http request.Client, l logging.Logger, settings SettingsPorter, appDir string) *Client {
	if appDir == "" {
		appDir = constants.AppDirName
	}

	return &Client{
		http:     http,
		l:        l.CopyWithPrefix("[WebDAV]"),
		settings: settings,
		appDir:   appDir,
		now:      time.Now,
	}
}

// Option 单次调用的额外设置
type Option interface {
	apply(*callOptions)
}

type callOptions struct {
	allowInsecure bool
	snapshot      *string
}

type optionFunc func(*callOptions)

func (f optionFunc) apply(o *callOptions) {
	f(o)
}

// WithAllowInsecure confirms that a non-HTTPS target may be used.
func WithAllowInsecure(allow bool) Option {
	return optionFunc(func(o *callOptions) {
		o.allowInsecure = allow
	})
}

// WithSnapshot uploads the given JSON instead of exporting current settings.
func WithSnapshot(json string) Option {
	return optionFunc(func(o *callOptions) {
		o.snapshot = &json
	})
}

func newCallOptions(opts []Option) *callOptions {
	o := &callOptions{}
	for _, opt := range opts {
		opt.apply(o)
	}
	return o
}
