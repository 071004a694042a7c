package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/QuickTabNavigator/QuickTabNavigator/application/dependency"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/serializer"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/setting"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/util"
	"github.com/spf13/cobra"
)

var (
	exportOut string
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write the snapshot to this file instead of stdout")

	settingsCmd.AddCommand(settingsExportCmd, settingsImportCmd, settingsSummaryCmd, settingsResetCmd, settingsMigrateCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Export, import and reset settings",
}

var settingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export settings as a JSON snapshot",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		content, err := dep.SettingsManager().ExportJSON(ctx)
		if err != nil {
			return nil, "", err
		}

		if exportOut == "" {
			return dep.SettingsManager().Export(ctx), content, nil
		}

		f, err := util.CreatNestedFile(exportOut)
		if err != nil {
			return nil, "", serializer.NewError(serializer.CodeIOFailed, "Failed to create output file", err)
		}
		defer f.Close()

		if _, err := f.WriteString(content); err != nil {
			return nil, "", serializer.NewError(serializer.CodeIOFailed, "Failed to write output file", err)
		}

		return map[string]string{"file": exportOut}, "Settings exported to " + exportOut, nil
	}),
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import settings from a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return nil, "", serializer.NewError(serializer.CodeIOFailed, "Failed to read snapshot file", err)
		}

		if err := dep.SettingsManager().ImportJSON(ctx, string(content)); err != nil {
			return nil, "", err
		}

		return dep.SettingsManager().Summary(ctx), "Settings imported.", nil
	}),
}

var settingsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print an overview of the current settings",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		s := dep.SettingsManager().Summary(ctx)
		return s, fmt.Sprintf("Search engines: %d\nQuick links:    %d (%d enabled)\nLocale:         %s",
			s.SearchEngines, s.QuickLinks, s.EnabledQuickLinks, s.Locale), nil
	}),
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove all settings so that defaults apply",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		if err := dep.SettingsManager().Reset(ctx); err != nil {
			return nil, "", err
		}

		return nil, "Settings reset.", nil
	}),
}

var settingsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy settings that only exist locally to the sync store",
	RunE: run(func(ctx context.Context, dep dependency.Dep, args []string) (any, string, error) {
		keys := append([]string{setting.WebDAVConfigKey}, setting.KnownKeys...)
		n := dep.SettingStore().Migrate(ctx, keys)
		return map[string]int{"migrated": n}, fmt.Sprintf("%d settings migrated.", n), nil
	}),
}
