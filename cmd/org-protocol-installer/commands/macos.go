package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/org-protocol/internal/config"
)

func init() {
	macosCmd.Flags().StringP("emacsclient", "e", "",
		"absolute path to emacsclient (default: found on PATH)")
	macosCmd.Flags().Bool("launch", false,
		"open the helper application after install so macOS registers the scheme")
	macosCmd.Flags().String("bundle", "",
		"where the helper application is written (default: /Applications/OrgProtocolClient.app)")

	bindFlag(config.KeyEmacsclientPath, macosCmd.Flags().Lookup("emacsclient"))
	bindFlag(config.KeyLaunchAfterInstall, macosCmd.Flags().Lookup("launch"))
	bindFlag(config.KeyBundlePath, macosCmd.Flags().Lookup("bundle"))

	rootCmd.AddCommand(macosCmd)
}

var macosCmd = &cobra.Command{
	Use:   "macos <install|uninstall>",
	Short: "Register or remove the handler on macOS",
	Long: `Install compiles an AppleScript helper application with osacompile. The
helper passes every org-protocol:// URL it receives to emacsclient and
brings Emacs to the front. The URL scheme is then declared in the helper's
Info.plist. Any previous helper at the same path is replaced.

macOS registers the scheme the first time the helper is launched. Pass
--launch to do that immediately; otherwise open it once yourself.

Uninstall removes the helper application. It succeeds if it is already gone.`,
	Example: `  # Install using emacsclient from PATH
  org-protocol-installer macos install

  # Install for Emacs.app and launch the helper
  org-protocol-installer macos install -e /Applications/Emacs.app/Contents/MacOS/bin/emacsclient --launch

  # Remove the helper
  org-protocol-installer macos uninstall

See Also: org-protocol-installer doctor`,
	ValidArgs: []string{string(config.ModeInstall), string(config.ModeUninstall)},
	Args:      modeArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTarget(cmd, config.TargetMacOS, args[0])
	},
}
