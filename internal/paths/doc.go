// Package paths resolves the filesystem locations org-protocol-installer
// reads and writes.
//
// # XDG Base Directory Compliance
//
// Locations come from github.com/adrg/xdg. The default desktop entry directory
// is $XDG_DATA_HOME/applications (~/.local/share/applications) and the config
// file is searched for in $XDG_CONFIG_HOME/org-protocol.
//
// # Targets
//
// Two install targets exist, [TargetLinux] and [TargetMacOS]. Use
// [ValidTarget] before trusting user input:
//
//	if !paths.ValidTarget(name) {
//	    return errors.Newf("unknown target %q", name)
//	}
//
// # macOS helper bundle
//
//	paths.DefaultHelperBundlePath                // /Applications/OrgProtocolClient.app
//	paths.InfoPlistPath(paths.DefaultHelperBundlePath) // .../Contents/Info.plist
package paths
