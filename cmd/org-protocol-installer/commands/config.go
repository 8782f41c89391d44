package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/org-protocol/internal/config"
)

var configFormat string

func init() {
	configListCmd.Flags().StringVar(&configFormat, "format", string(config.FormatYAML),
		"output format: yaml, toml")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the installer configuration",
	Long: `Show or change the settings the installers use.

Settings come from, in increasing precedence: built-in defaults, the
config file, ORG_PROTOCOL_* environment variables and command flags.

Without a subcommand, lists the effective configuration.`,
	Example: `  # List the effective configuration
  org-protocol-installer config

  # Always launch the macOS helper after install
  org-protocol-installer config set macos.launch_after_install true

See Also: org-protocol-installer doctor`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Get a configuration value",
	Example:   `  org-protocol-installer config get linux.desktop_entry_directory`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys(),
	RunE:      runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save the effective configuration to the
config file. Paths must be absolute.`,
	Example: `  org-protocol-installer config set macos.emacsclient_path /opt/homebrew/bin/emacsclient`,
	Args:    cobra.ExactArgs(2),
	RunE:    runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the effective configuration",
	Example: `  org-protocol-installer config list
  org-protocol-installer config list --format toml`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !viper.IsSet(key) {
		fmt.Fprintln(cmd.OutOrStdout(), "not set")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), viper.GetString(key))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if err := config.Set(key, value); err != nil {
		return err
	}

	settings, err := config.Current()
	if err != nil {
		return err
	}

	path := configFilePath()
	if err := config.Save(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, viper.GetString(key), path)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	settings, err := config.Current()
	if err != nil {
		return err
	}

	data, err := config.Encode(settings, config.Format(configFormat))
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), configFilePath())
	return nil
}

// configFilePath is the file in use: --config, the file Viper found, or
// the default location.
func configFilePath() string {
	if configFile != "" {
		return configFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return config.DefaultFilePath()
}

