package webdav

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/request"
)

const backupTimeLayout = "20060102150405"

// IsDirectory reports whether target names a collection, i.e. its path ends with "/".
// An empty path counts as the server root.
func IsDirectory(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return strings.HasSuffix(target, "/")
	}

	return u.Path == "" || strings.HasSuffix(u.Path, "/")
}

// EnsureSlash appends a trailing "/" when missing.
func EnsureSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// BuildDirURL resolves appDir as a sub collection of base. The query of base is kept.
func BuildDirURL(base, appDir string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	u.Path = EnsureSlash(EnsureSlash(u.Path) + strings.Trim(appDir, "/"))
	u.RawPath = ""
	return u.String(), nil
}

// joinURL appends name to the path of dir.
func joinURL(dir, name string) (string, error) {
	u, err := url.Parse(dir)
	if err != nil {
		return "", err
	}

	u.Path = EnsureSlash(u.Path) + name
	u.RawPath = ""
	return u.String(), nil
}

// IsHTTPS reports whether target uses the https scheme.
func IsHTTPS(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "https")
}

// BackupFileName returns the timestamped name of a backup written at t, in local time.
func BackupFileName(t time.Time) string {
	return "backup_" + t.Local().Format(backupTimeLayout) + ".json"
}

// EnsureAppDir returns the app directory URL under base, creating it with MKCOL if a
// PROPFIND does not find it. The MKCOL status is not checked: a failure surfaces on the
// following operation.
func (c *Client) EnsureAppDir(ctx context.Context, base string, cfg Config) (string, error) {
	dir, err := BuildDirURL(base, c.appDir)
	if err != nil {
		return "", err
	}

	dav, resource, err := c.dav(ctx, dir, cfg, nil)
	if err != nil {
		return "", err
	}

	_, err = dav.Stat(resource)
	if err == nil {
		return dir, nil
	}
	status, ok := davStatus(err)
	if !ok {
		return "", err
	}
	if request.IsSuccessOrRedirect(status) {
		return dir, nil
	}

	if err := dav.Mkdir(resource, 0755); err != nil {
		if _, ok := davStatus(err); !ok {
			return "", err
		}
		c.l.Info("App directory %q not found and could not be created: %s", c.appDir, err)
		return dir, nil
	}

	c.l.Info("App directory %q created.", c.appDir)
	return dir, nil
}
