package webdav

import (
	"errors"
	"fmt"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/serializer"
)

var (
	ErrURLNotSet        = errors.New("webdav target url is not configured")
	ErrInsecureScheme   = errors.New("non-https webdav target requires confirmation")
	ErrBackupNotFound   = errors.New("no backup file found")
	ErrUploadFailed     = errors.New("upload failed")
	ErrDownloadFailed   = errors.New("download failed")
	ErrNotDirectory     = errors.New("webdav target is not a directory")
	ErrNoSettingsPorter = errors.New("no settings exporter/importer configured")
)

// checkTarget rejects a config before any network I/O is done.
func checkTarget(cfg Config, o *callOptions) error {
	if cfg.URL == "" {
		return serializer.NewError(serializer.CodeParamErr, "WebDAV target URL is not configured", ErrURLNotSet)
	}

	if !IsHTTPS(cfg.URL) && !o.allowInsecure {
		return serializer.NewError(serializer.CodeInsecureScheme, "Non-HTTPS connection, confirmation required to continue", ErrInsecureScheme)
	}

	return nil
}

func statusError(code int, sentinel error, status int) error {
	raw := fmt.Errorf("%w: HTTP %d", sentinel, status)
	return serializer.NewError(code, raw.Error(), raw)
}

// transferError turns an HTTP status reported by gowebdav into an AppError. Transport errors
// are returned as they are.
func transferError(err error, code int, sentinel error) error {
	if status, ok := davStatus(err); ok {
		return statusError(code, sentinel, status)
	}
	return err
}
