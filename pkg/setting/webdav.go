package setting

import (
	"context"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/webdav"
)

const (
	WebDAVConfigKey   = "webdavConfig"
	WebDAVPasswordKey = "webdavPassword"
)

// GetWebDAVConfig loads the stored WebDAV config. The password lives in the secret store;
// it is empty when the secret cannot be read.
func GetWebDAVConfig(ctx context.Context, s Store) webdav.Config {
	cfg := GetStoredValue(ctx, s, WebDAVConfigKey, webdav.Config{})
	cfg.Password, _ = s.GetSecret(ctx, WebDAVPasswordKey)
	return cfg
}

// SetWebDAVConfig persists cfg. The config record is written with a blank password and the
// password goes to the secret store only.
func SetWebDAVConfig(ctx context.Context, s Store, cfg webdav.Config, l logging.Logger) error {
	if err := s.Set(ctx, WebDAVConfigKey, webdav.Config{URL: cfg.URL, Username: cfg.Username}); err != nil {
		return err
	}

	if err := s.SetSecret(ctx, WebDAVPasswordKey, cfg.Password); err != nil {
		l.Warning("WebDAV password is not saved: %s", err)
	}

	return nil
}
