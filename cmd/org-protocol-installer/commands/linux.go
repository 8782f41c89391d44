package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/org-protocol/internal/config"
)

func init() {
	linuxCmd.Flags().StringP("desktop-entry-dir", "d", "",
		"directory the desktop entry is written to (default: $XDG_DATA_HOME/applications)")
	linuxCmd.Flags().StringP("desktop-file", "f", "",
		"desktop entry file name (default: org-protocol.desktop)")

	bindFlag(config.KeyDesktopEntryDirectory, linuxCmd.Flags().Lookup("desktop-entry-dir"))
	bindFlag(config.KeyDesktopFileName, linuxCmd.Flags().Lookup("desktop-file"))

	rootCmd.AddCommand(linuxCmd)
}

var linuxCmd = &cobra.Command{
	Use:   "linux <install|uninstall>",
	Short: "Register or remove the handler on Linux",
	Long: `Install writes a desktop entry that runs "emacsclient %u" and makes it
the default handler for x-scheme-handler/org-protocol with xdg-mime.
An existing file with the same name is replaced.

Uninstall removes the desktop entry. It succeeds if the file is already gone.`,
	Example: `  # Install into ~/.local/share/applications
  org-protocol-installer linux install

  # Install under a custom name
  org-protocol-installer linux install -d ~/.local/share/applications -f emacs-capture.desktop

  # Remove it again
  org-protocol-installer linux uninstall -f emacs-capture.desktop

See Also: org-protocol-installer doctor`,
	ValidArgs: []string{string(config.ModeInstall), string(config.ModeUninstall)},
	Args:      modeArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTarget(cmd, config.TargetLinux, args[0])
	},
}
