package webdav

import (
	"context"
	"fmt"
	"net/http"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/request"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/serializer"
)

// TestResult is the outcome of a connection test. Status is 0 when no HTTP response
// was received.
type TestResult struct {
	OK      bool   `json:"ok"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

// Test checks that the configured target is reachable with the given credentials.
// Directory targets are checked through the app directory; anything else is tried with
// HEAD, OPTIONS and PROPFIND in turn, stopping at the first 2xx/3xx answer. Only a config
// rejected before any I/O is returned as error, failed connections are reported in the result.
func (c *Client) Test(ctx context.Context, cfg Config, opts ...Option) (TestResult, error) {
	o := newCallOptions(opts)
	if err := checkTarget(cfg, o); err != nil {
		return TestResult{Message: err.Error()}, err
	}

	res, err := c.test(ctx, cfg)
	if err != nil {
		c.l.Warning("Connection test against %s failed: %s", cfg.URL, err)
		return TestResult{Message: err.Error()}, nil
	}

	return res, nil
}

func (c *Client) test(ctx context.Context, cfg Config) (TestResult, error) {
	if IsDirectory(cfg.URL) {
		dir, err := c.EnsureAppDir(ctx, cfg.URL, cfg)
		if err != nil {
			return TestResult{}, err
		}

		status, err := c.stat(ctx, dir, cfg)
		if err != nil {
			return TestResult{}, err
		}
		if request.IsSuccessOrRedirect(status) {
			return TestResult{OK: true, Status: status}, nil
		}
	}

	var status int
	for _, method := range []string{"HEAD", "OPTIONS", "PROPFIND"} {
		var header http.Header
		if method == "PROPFIND" {
			header = http.Header{"Depth": {"0"}}
		}

		var err error
		status, err = c.check(ctx, method, cfg.URL, header, cfg)
		if err != nil {
			return TestResult{}, err
		}
		if request.IsSuccessOrRedirect(status) {
			return TestResult{OK: true, Status: status}, nil
		}
	}

	return TestResult{Status: status, Message: fmt.Sprintf("connection failed (%d)", status)}, nil
}

// stat sends PROPFIND Depth 0 to target and returns its status.
func (c *Client) stat(ctx context.Context, target string, cfg Config) (int, error) {
	dav, resource, err := c.dav(ctx, target, cfg, nil)
	if err != nil {
		return 0, err
	}

	if _, err := dav.Stat(resource); err != nil {
		if status, ok := davStatus(err); ok {
			return status, nil
		}
		return 0, err
	}

	return http.StatusMultiStatus, nil
}

func (c *Client) check(ctx context.Context, method, target string, header http.Header, cfg Config) (int, error) {
	resp, err := c.RequestWithAuth(ctx, method, target, header, nil, cfg)
	if err != nil {
		return 0, err
	}

	request.BlackHole(resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

// Upload writes a settings snapshot and returns the URL it was written to. For directory
// targets a new timestamped file is created under the app directory; a file target is
// overwritten in place.
func (c *Client) Upload(ctx context.Context, cfg Config, opts ...Option) (string, error) {
	o := newCallOptions(opts)
	if err := checkTarget(cfg, o); err != nil {
		return "", err
	}

	var body string
	if o.snapshot != nil {
		body = *o.snapshot
	} else {
		if c.settings == nil {
			return "", serializer.NewError(serializer.CodeInternalSetting, "No settings exporter available", ErrNoSettingsPorter)
		}

		exported, err := c.settings.ExportJSON(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to export settings: %w", err)
		}
		body = exported
	}

	target := cfg.URL
	header := http.Header{"Content-Type": {"application/json"}}
	if IsDirectory(cfg.URL) {
		dir, err := c.EnsureAppDir(ctx, cfg.URL, cfg)
		if err != nil {
			return "", err
		}

		if target, err = joinURL(dir, BackupFileName(c.now())); err != nil {
			return "", err
		}
		// 同一秒内的两次上传不能覆盖已有备份
		header.Set("If-None-Match", "*")
	}

	dav, resource, err := c.dav(ctx, target, cfg, header)
	if err != nil {
		return "", err
	}

	if err := dav.Write(resource, []byte(body), 0644); err != nil {
		return "", transferError(err, serializer.CodeUploadFailed, ErrUploadFailed)
	}

	c.l.Info("Backup uploaded to %s.", target)
	return target, nil
}

// Download returns the raw text of the backup. For directory targets this is the newest
// timestamped backup in the app directory.
func (c *Client) Download(ctx context.Context, cfg Config, opts ...Option) (string, error) {
	o := newCallOptions(opts)
	if err := checkTarget(cfg, o); err != nil {
		return "", err
	}

	target := cfg.URL
	if IsDirectory(cfg.URL) {
		dir, err := c.EnsureAppDir(ctx, cfg.URL, cfg)
		if err != nil {
			return "", err
		}

		latest, found, err := c.PickLatestBackupFile(ctx, dir, cfg)
		if err != nil {
			return "", err
		}
		if !found {
			return "", serializer.NewError(serializer.CodeNotFound, "No backup file found", ErrBackupNotFound)
		}
		target = latest
	}

	dav, resource, err := c.dav(ctx, target, cfg, nil)
	if err != nil {
		return "", err
	}

	content, err := dav.Read(resource)
	if err != nil {
		return "", transferError(err, serializer.CodeDownloadFailed, ErrDownloadFailed)
	}

	c.l.Info("Backup downloaded from %s.", target)
	return string(content), nil
}

// Restore downloads the backup and hands its raw text to the settings importer.
func (c *Client) Restore(ctx context.Context, cfg Config, opts ...Option) error {
	if c.settings == nil {
		return serializer.NewError(serializer.CodeInternalSetting, "No settings importer available", ErrNoSettingsPorter)
	}

	content, err := c.Download(ctx, cfg, opts...)
	if err != nil {
		return err
	}

	return c.settings.ImportJSON(ctx, content)
}
