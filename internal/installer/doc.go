// Package installer registers Emacs as the handler for org-protocol:// URLs.
//
// On Linux a desktop entry is written to the applications directory and
// made the default x-scheme-handler/org-protocol handler with xdg-mime.
//
// On macOS a small AppleScript application is compiled with osacompile and
// its Info.plist is rewritten to declare the URL scheme. The application
// forwards every URL it receives to emacsclient.
//
// Use [New] to select the installer for a validated [config.Config] and
// [Run] to perform the configured mode:
//
//	inst, err := installer.New(cfg, installer.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	return installer.Run(ctx, inst, cfg.Mode)
package installer
