package webdav

import (
	"context"
	"net/url"
	"os"
	"path"
	"regexp"
	"sort"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/serializer"
	"github.com/samber/lo"
)

var backupNamePattern = regexp.MustCompile(`^backup_\d{14}\.json$`)

// BackupFile is a backup discovered in a WebDAV collection.
type BackupFile struct {
	Href string `json:"href"` // absolute URL
	Name string `json:"name"`
}

// ListBackups resolves hrefs against dir and returns the backup files among them, newest first.
// Relative hrefs keep the query of dir.
func ListBackups(dir string, hrefs []string) []BackupFile {
	base, err := url.Parse(dir)
	if err != nil {
		return nil
	}

	files := lo.FilterMap(hrefs, func(href string, _ int) (BackupFile, bool) {
		ref, err := url.Parse(href)
		if err != nil {
			return BackupFile{}, false
		}

		abs := base.ResolveReference(ref)
		if ref.Host == "" && ref.RawQuery == "" {
			abs.RawQuery = base.RawQuery
		}
		name := path.Base(abs.Path)
		if !backupNamePattern.MatchString(name) {
			return BackupFile{}, false
		}

		return BackupFile{Href: abs.String(), Name: name}, true
	})

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Name > files[j].Name
	})
	return files
}

// SelectLatestBackup returns the newest backup file among hrefs listed under dir.
func SelectLatestBackup(dir string, hrefs []string) (BackupFile, bool) {
	files := ListBackups(dir, hrefs)
	if len(files) == 0 {
		return BackupFile{}, false
	}

	return files[0], true
}

// ListBackupFiles lists backups in dir with PROPFIND Depth 1. A non-207 status or an
// unusable multistatus body yields an empty list rather than an error.
func (c *Client) ListBackupFiles(ctx context.Context, dir string, cfg Config) ([]BackupFile, error) {
	dav, resource, err := c.dav(ctx, dir, cfg, nil)
	if err != nil {
		return nil, err
	}

	infos, err := dav.ReadDir(resource)
	if err != nil {
		if _, ok := davStatus(err); !ok {
			return nil, err
		}

		c.l.Debug("Listing %s failed, no backups listed: %s", dir, err)
		return nil, nil
	}

	// 子项名称即相对 href
	names := lo.FilterMap(infos, func(info os.FileInfo, _ int) (string, bool) {
		return (&url.URL{Path: info.Name()}).String(), !info.IsDir()
	})
	return ListBackups(dir, names), nil
}

// PickLatestBackupFile returns the absolute URL of the newest backup in dir. found is false
// when the directory has no backup or could not be listed.
func (c *Client) PickLatestBackupFile(ctx context.Context, dir string, cfg Config) (string, bool, error) {
	files, err := c.ListBackupFiles(ctx, dir, cfg)
	if err != nil {
		return "", false, err
	}

	if len(files) == 0 {
		return "", false, nil
	}

	return files[0].Href, true, nil
}

// List returns the backups in the app directory of a directory target, newest first.
func (c *Client) List(ctx context.Context, cfg Config, opts ...Option) ([]BackupFile, error) {
	o := newCallOptions(opts)
	if err := checkTarget(cfg, o); err != nil {
		return nil, err
	}

	if !IsDirectory(cfg.URL) {
		return nil, serializer.NewError(serializer.CodeParamErr, "Only directory targets can be listed", ErrNotDirectory)
	}

	dir, err := c.EnsureAppDir(ctx, cfg.URL, cfg)
	if err != nil {
		return nil, err
	}

	return c.ListBackupFiles(ctx, dir, cfg)
}
