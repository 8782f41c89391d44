// Package config produces the validated [Config] that crosses into the
// installer package.
//
// Settings are layered by Viper, highest precedence first: command-line
// flags bound by the CLI, ORG_PROTOCOL_* environment variables, config.yaml
// in the working directory or $XDG_CONFIG_HOME/org-protocol, then defaults.
//
//	linux:
//	  desktop_entry_directory: ~/.local/share/applications
//	  desktop_file_name: org-protocol.desktop
//	macos:
//	  emacsclient_path: /opt/homebrew/bin/emacsclient
//	  launch_after_install: false
//	  bundle_path: /Applications/OrgProtocolClient.app
//
// [New] selects the sub-config for the chosen target and validates it. Any
// problem is returned as a single error marked errors.ErrConfiguration, so
// no installer is ever constructed from an invalid value.
package config
