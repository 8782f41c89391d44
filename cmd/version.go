// Package cmd contains build-time variables injected via ldflags.
package cmd

import "runtime"

// Build-time variables set via ldflags, e.g.
//
//	go build -ldflags "-X github.com/thoreinstein/org-protocol/cmd.Version=v1.0.0"
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// Platform returns the OS and architecture the binary was built for.
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}
