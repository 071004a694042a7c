package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/QuickTabNavigator/QuickTabNavigator/application/dependency"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/serializer"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/setting"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/util"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/webdav"
	"github.com/spf13/cobra"
)

var (
	davURL        string
	davUsername   string
	davPassword   string
	allowInsecure bool
	uploadFile    string
	downloadOut   string
)

func init() {
	rootCmd.AddCommand(webdavCmd)
	webdavCmd.PersistentFlags().StringVar(&davURL, "url", "", "WebDAV target, a file URL or a directory URL ending with /")
	webdavCmd.PersistentFlags().StringVar(&davUsername, "username", "", "WebDAV username")
	webdavCmd.PersistentFlags().StringVar(&davPassword, "password", "", "WebDAV password")
	webdavCmd.PersistentFlags().BoolVar(&allowInsecure, "allow-insecure", false, "Confirm using a non-HTTPS target")

	webdavUploadCmd.Flags().StringVar(&uploadFile, "file", "", "Upload this snapshot file instead of the current settings")
	webdavDownloadCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "Write the backup to this file instead of stdout")

	webdavCmd.AddCommand(webdavConfigCmd, webdavShowCmd, webdavTestCmd, webdavUploadCmd,
		webdavDownloadCmd, webdavRestoreCmd, webdavListCmd)
}

var webdavCmd = &cobra.Command{
	Use:   "webdav",
	Short: "Back up settings to a WebDAV server",
}

var webdavConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Save the WebDAV target and credentials",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		if davURL == "" {
			return nil, "", serializer.NewError(serializer.CodeParamErr, "WebDAV target URL is not configured", webdav.ErrURLNotSet)
		}

		cfg := webdav.Config{URL: davURL, Username: davUsername, Password: davPassword}
		if err := setting.SetWebDAVConfig(ctx, dep.SettingStore(), cfg, dep.Logger()); err != nil {
			return nil, "", err
		}

		return maskConfig(cfg), "WebDAV config saved.", nil
	}),
}

var webdavShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved WebDAV config",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		cfg := maskConfig(setting.GetWebDAVConfig(ctx, dep.SettingStore()))
		return cfg, fmt.Sprintf("URL:      %s\nUsername: %s\nPassword: %s", cfg.URL, cfg.Username, cfg.Password), nil
	}),
}

var webdavTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the WebDAV target is reachable",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		res, err := dep.WebDAVClient().Test(ctx, resolveConfig(ctx, dep), webdav.WithAllowInsecure(allowInsecure))
		if err != nil {
			return res, "", err
		}
		if !res.OK {
			return res, "", fmt.Errorf("connection test failed: %s", res.Message)
		}

		return res, fmt.Sprintf("Connection OK (%d).", res.Status), nil
	}),
}

var webdavUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a settings backup",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		opts := []webdav.Option{webdav.WithAllowInsecure(allowInsecure)}
		if uploadFile != "" {
			content, err := os.ReadFile(uploadFile)
			if err != nil {
				return nil, "", serializer.NewError(serializer.CodeIOFailed, "Failed to read snapshot file", err)
			}
			opts = append(opts, webdav.WithSnapshot(string(content)))
		}

		target, err := dep.WebDAVClient().Upload(ctx, resolveConfig(ctx, dep), opts...)
		if err != nil {
			return nil, "", err
		}

		return map[string]string{"url": target}, "Backup uploaded to " + target, nil
	}),
}

var webdavDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the latest settings backup",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		content, err := dep.WebDAVClient().Download(ctx, resolveConfig(ctx, dep), webdav.WithAllowInsecure(allowInsecure))
		if err != nil {
			return nil, "", err
		}

		if downloadOut == "" {
			return content, content, nil
		}

		f, err := util.CreatNestedFile(downloadOut)
		if err != nil {
			return nil, "", serializer.NewError(serializer.CodeIOFailed, "Failed to create output file", err)
		}
		defer f.Close()

		if _, err := f.WriteString(content); err != nil {
			return nil, "", serializer.NewError(serializer.CodeIOFailed, "Failed to write output file", err)
		}

		return map[string]string{"file": downloadOut}, "Backup saved to " + downloadOut, nil
	}),
}

var webdavRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Download the latest backup and import it",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		if err := dep.WebDAVClient().Restore(ctx, resolveConfig(ctx, dep), webdav.WithAllowInsecure(allowInsecure)); err != nil {
			return nil, "", err
		}

		return dep.SettingsManager().Summary(ctx), "Settings restored.", nil
	}),
}

var webdavListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the backups of a directory target, newest first",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		files, err := dep.WebDAVClient().List(ctx, resolveConfig(ctx, dep), webdav.WithAllowInsecure(allowInsecure))
		if err != nil {
			return nil, "", err
		}

		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Name)
		}
		return files, strings.Join(names, "\n"), nil
	}),
}

// resolveConfig overlays the credentials given on the command line on the saved config.
func resolveConfig(ctx context.Context, dep dependency.Dep) webdav.Config {
	cfg := setting.GetWebDAVConfig(ctx, dep.SettingStore())
	if davURL != "" {
		cfg.URL = davURL
	}
	if davUsername != "" {
		cfg.Username = davUsername
	}
	if davPassword != "" {
		cfg.Password = davPassword
	}

	return cfg
}

func maskConfig(cfg webdav.Config) webdav.Config {
	if cfg.Password != "" {
		cfg.Password = "******"
	}
	return cfg
}
