package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/org-protocol/internal/config"
	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/installer"
	"github.com/thoreinstein/org-protocol/internal/logging"
	"github.com/thoreinstein/org-protocol/internal/runner"
)

// modeArgs validates the single install|uninstall argument.
func modeArgs(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.NewUserError(
			errors.Newf("expected one argument, got %d", len(args)),
			"Mode must be one of: install, uninstall",
		)
	}
	_, err := config.ParseMode(args[0])
	return err
}

// newInstaller is replaced in tests.
var newInstaller = func(cfg *config.Config, opts ...installer.Option) (installer.Installer, error) {
	return installer.New(cfg, opts...)
}

// runTarget builds the config for target from the current settings and
// runs mode.
func runTarget(cmd *cobra.Command, target config.Target, modeArg string) error {
	mode, err := config.ParseMode(modeArg)
	if err != nil {
		return err
	}

	settings, err := config.Current()
	if err != nil {
		return err
	}

	cfg, err := config.New(target, mode, settings)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	out := progressWriter(cmd)

	inst, err := newInstaller(cfg,
		installer.WithRunner(runner.New(logger)),
		installer.WithLogger(logger),
		installer.WithOutput(out),
	)
	if err != nil {
		return err
	}

	logger.Info("running installer", "target", target, "mode", mode)
	if err := installer.Run(ctx, inst, mode); err != nil {
		return err
	}

	printSummary(out, cfg)
	return nil
}

// progressWriter returns where operator messages go; nowhere under --quiet.
func progressWriter(cmd *cobra.Command) io.Writer {
	if quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

// printSummary reports the result and what to do next.
func printSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w)
	if cfg.Mode == config.ModeUninstall {
		fmt.Fprintln(w, success("org-protocol handler removed"))
		return
	}

	fmt.Fprintln(w, success("org-protocol handler installed"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, heading("Next steps:"))
	fmt.Fprintln(w, "  1. Load org-protocol in your Emacs init file and start the server:")
	fmt.Fprintln(w, "       (server-start)")
	fmt.Fprintln(w, "       (require 'org-protocol)")
	fmt.Fprintln(w, "  2. Add a bookmarklet to your browser, for example:")
	fmt.Fprintln(w, "       "+bookmarklet)
	if cfg.Target == config.TargetMacOS && !cfg.MacOS.LaunchAfterInstall {
		fmt.Fprintf(w, "  3. Open %s once so macOS picks up the URL scheme\n", cfg.MacOS.BundlePath)
	}
}

// bookmarklet stores the current page as an Org link.
const bookmarklet = `javascript:location.href='org-protocol://store-link?url='+encodeURIComponent(location.href)+'&title='+encodeURIComponent(document.title)`
