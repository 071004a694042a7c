package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/QuickTabNavigator/QuickTabNavigator/application/constants"
	"github.com/QuickTabNavigator/QuickTabNavigator/application/dependency"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/serializer"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/util"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/webdav"
	"github.com/spf13/cobra"
)

var (
	confPath   string
	jsonOutput bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&confPath, "conf", "c", util.DataPath("conf.ini"), "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&util.UseWorkingDir, "use-working-dir", "w", false, "Use working directory, instead of executable directory")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

var rootCmd = &cobra.Command{
	Use:     "qtn",
	Short:   "QuickTabNavigator settings and WebDAV backup tool",
	Long:    `Manage QuickTabNavigator settings and back them up to, or restore them from, a WebDAV server.`,
	Version: fmt.Sprintf("%s (%s)", constants.BackendVersion, constants.LastCommit),

	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !jsonOutput {
			fmt.Fprintln(os.Stderr, "Error:", exitMessage(err))
		}
		os.Exit(1)
	}
}

// action is the body of a subcommand. data is printed in JSON mode, text otherwise.
type action func(ctx context.Context, dep dependency.Dep, args []string) (data any, text string, err error)

// run builds the dependencies for a single invocation with a correlated logger, and
// persists the local cache once the action returns.
func run(a action) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		dep := dependency.NewDependency(
			dependency.WithConfigPath(confPath),
		)
		ctx = logging.NewContext(ctx, dep.Logger())
		ctx = dep.ForkWithLogger(ctx, logging.FromContext(ctx))

		data, text, err := a(ctx, dependency.FromContext(ctx), args)
		if shutdownErr := dep.Shutdown(ctx); shutdownErr != nil {
			logging.FromContext(ctx).Warning("Failed to persist local cache: %s", shutdownErr)
		}

		return output(cmd, ctx, data, text, err)
	}
}

func output(cmd *cobra.Command, ctx context.Context, data any, text string, err error) error {
	w := cmd.OutOrStdout()
	if jsonOutput {
		res := serializer.NewResponse(ctx, data)
		if err != nil {
			res = serializer.Err(ctx, err)
			res.Data = data
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if encodeErr := enc.Encode(res); encodeErr != nil {
			return encodeErr
		}
		return err
	}

	if text != "" {
		fmt.Fprintln(w, text)
	}
	return err
}

// exitMessage adds a hint for the errors a user can fix from the command line.
func exitMessage(err error) string {
	switch serializer.ErrorCode(err) {
	case serializer.CodeInsecureScheme:
		return err.Error() + ", pass --allow-insecure to confirm"
	case serializer.CodeParamErr:
		if errors.Is(err, webdav.ErrURLNotSet) {
			return err.Error() + ", set it with \"qtn webdav config --url\" or pass --url"
		}
	case serializer.CodeSnapshotInvalid:
		var appErr serializer.AppError
		if errors.As(err, &appErr) && appErr.RawError != nil {
			return fmt.Sprintf("%s: %s", appErr.Msg, appErr.RawError)
		}
	}

	return err.Error()
}
