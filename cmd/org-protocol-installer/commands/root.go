// Package commands implements the CLI commands for org-protocol-installer.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/thoreinstein/org-protocol/cmd"
	"github.com/thoreinstein/org-protocol/internal/config"
	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/logging"
)

// debugEnv raises the log level when no -v flag is given.
const debugEnv = "ORG_PROTOCOL_DEBUG"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// interactive holds the value of the -i/--interactive flag.
var interactive bool

// logCloser releases the --log-file handle once the command finishes.
var logCloser io.Closer

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./config.yaml, then $XDG_CONFIG_HOME/org-protocol/config.yaml)")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"pick an action from a list")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("org-protocol-installer version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewUserError(err, "Run 'org-protocol-installer --help' for usage")
	})
}

// flagBindings maps viper keys to the platform flags that override them.
var flagBindings = map[string]*pflag.Flag{}

// bindFlag records a flag to bind to key each time the config is loaded.
func bindFlag(key string, f *pflag.Flag) {
	flagBindings[key] = f
}

// initConfig resets viper before loading; values set during an earlier
// Execute in the same process must not shadow this run's flags.
func initConfig() {
	viper.Reset()
	config.Init()
	for key, f := range flagBindings {
		_ = viper.BindPFlag(key, f)
	}
	// Capture load errors for later reporting
	_, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "org-protocol-installer",
	Short: "Register Emacs as the handler for org-protocol:// URLs",
	Long: `org-protocol-installer registers Emacs as the handler for org-protocol://
URLs so browser bookmarklets can capture links and notes into Org mode.

On Linux it writes a desktop entry and makes it the default handler with
xdg-mime. On macOS it compiles a small AppleScript helper application with
osacompile and declares the URL scheme in its Info.plist.

Both install and uninstall are safe to run repeatedly.`,
	Example: `  # Register the handler on Linux
  org-protocol-installer linux install

  # Register the handler on macOS and launch the helper once
  org-protocol-installer macos install --launch

  # Check the installation
  org-protocol-installer doctor

  See Also: org-protocol-installer config`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging first
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfigLoad(cmd, args)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if interactive {
			return runInteractive(cmd)
		}
		return cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv(debugEnv); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(logging.Options{
		Level:   level,
		Format:  format,
		Console: cmd.ErrOrStderr(),
		File:    logFile,
	})
	if err != nil {
		return err
	}
	closeLogFile()
	logCloser = closer

	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfigLoad reports a config file that exists but could not be read.
func checkConfigLoad(cmd *cobra.Command, _ []string) error {
	// Skip validation for help and version commands
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}

	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// Execute runs the root command. Errors that carry no category come from
// argument parsing and are reported as user errors.
func Execute() error {
	defer closeLogFile()
	return classify(rootCmd.Execute())
}

func closeLogFile() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

func classify(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	for _, category := range []error{
		errors.ErrConfiguration,
		errors.ErrFilesystem,
		errors.ErrExternalTool,
		errors.ErrMalformedInput,
	} {
		if errors.Is(err, category) {
			return err
		}
	}
	return errors.NewUserError(err, "Run 'org-protocol-installer --help' for usage")
}
