package doctor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/thoreinstein/org-protocol/internal/config"
	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/installer"
	"github.com/thoreinstein/org-protocol/internal/plist"
	"github.com/thoreinstein/org-protocol/internal/runner/mocks"
)

const minimalPlist = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>CFBundleName</key>
	<string>OrgProtocolClient</string>
</dict>
</plist>
`

func notFound(tool string) error {
	return errors.WithHint(
		errors.Mark(errors.Newf("locating %s: executable file not found in $PATH", tool), errors.ErrExternalTool),
		"Install xdg-utils",
	)
}

func TestForTarget(t *testing.T) {
	s := &config.Settings{
		Linux: config.LinuxConfig{DesktopEntryDirectory: "/tmp/applications", DesktopFileName: "org-protocol.desktop"},
		MacOS: config.MacOSConfig{EmacsclientPath: "/usr/local/bin/emacsclient", BundlePath: "/Applications/OrgProtocolClient.app"},
	}
	r := mocks.NewMockRunner(t)

	tests := []struct {
		target config.Target
		want   []string
	}{
		{config.TargetLinux, []string{"tool-xdg-mime", "emacsclient", "desktop-entry", "scheme-registration", "path-permissions"}},
		{config.TargetMacOS, []string{"tool-osacompile", "tool-open", "emacsclient", "helper-app", "path-permissions"}},
		{config.Target("windows"), nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			checks := ForTarget(tt.target, s, r)
			if len(checks) != len(tt.want) {
				t.Fatalf("ForTarget(%s) returned %d checks, want %d", tt.target, len(checks), len(tt.want))
			}
			for i, c := range checks {
				if c.Name() != tt.want[i] {
					t.Errorf("checks[%d].Name() = %q, want %q", i, c.Name(), tt.want[i])
				}
			}
		})
	}
}

func TestToolCheck(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		r := mocks.NewMockRunner(t)
		r.EXPECT().LookPath("xdg-mime").Return("/usr/bin/xdg-mime", nil)

		got := NewToolCheck("xdg-mime", r).Run(context.Background())
		if got.Status != SeverityPass {
			t.Errorf("Status = %v, want pass", got.Status)
		}
		if got.Details["path"] != "/usr/bin/xdg-mime" {
			t.Errorf("Details[path] = %v", got.Details["path"])
		}
	})

	t.Run("missing", func(t *testing.T) {
		r := mocks.NewMockRunner(t)
		r.EXPECT().LookPath("xdg-mime").Return("", notFound("xdg-mime"))

		got := NewToolCheck("xdg-mime", r).Run(context.Background())
		if got.Status != SeverityError {
			t.Errorf("Status = %v, want error", got.Status)
		}
		if got.FixHint != "Install xdg-utils" {
			t.Errorf("FixHint = %q, want hint from the runner error", got.FixHint)
		}
	})
}

func TestEmacsclientCheck_PATH(t *testing.T) {
	r := mocks.NewMockRunner(t)
	r.EXPECT().LookPath("emacsclient").Return("", notFound("emacsclient")).Once()

	got := NewEmacsclientCheck("", r).Run(context.Background())
	if got.Status != SeverityError {
		t.Errorf("Status = %v, want error", got.Status)
	}

	r.EXPECT().LookPath("emacsclient").Return("/usr/bin/emacsclient", nil).Once()
	got = NewEmacsclientCheck("", r).Run(context.Background())
	if got.Status != SeverityPass {
		t.Errorf("Status = %v, want pass", got.Status)
	}
}

func TestEmacsclientCheck_ConfiguredPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not meaningful on Windows")
	}

	dir := t.TempDir()
	executable := filepath.Join(dir, "emacsclient")
	if err := os.WriteFile(executable, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want Severity
	}{
		{"executable", executable, SeverityPass},
		{"not executable", plain, SeverityError},
		{"directory", dir, SeverityError},
		{"missing", filepath.Join(dir, "nope"), SeverityError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEmacsclientCheck(tt.path, nil).Run(context.Background())
			if got.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", got.Status, tt.want, got.Message)
			}
		})
	}
}

func TestDesktopEntryCheck(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "current.desktop")
	if err := os.WriteFile(current, []byte(installer.DesktopEntry), 0o644); err != nil {
		t.Fatal(err)
	}
	edited := filepath.Join(dir, "edited.desktop")
	if err := os.WriteFile(edited, []byte(strings.Replace(installer.DesktopEntry, "emacsclient", "emacsclient -c", 1)), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want Severity
	}{
		{"installed", current, SeverityPass},
		{"modified", edited, SeverityWarning},
		{"not installed", filepath.Join(dir, "missing.desktop"), SeverityInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewDesktopEntryCheck(tt.path).Run(context.Background())
			if got.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", got.Status, tt.want, got.Message)
			}
		})
	}
}

func TestRegistrationCheck(t *testing.T) {
	tests := []struct {
		name    string
		handler string
		err     error
		want    Severity
	}{
		{"registered", "org-protocol.desktop", nil, SeverityPass},
		{"other handler", "firefox.desktop", nil, SeverityWarning},
		{"none", "", nil, SeverityInfo},
		{"query failed", "", notFound("xdg-mime"), SeverityWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mocks.NewMockRunner(t)
			r.EXPECT().Output(mock.Anything, "xdg-mime", "query", "default", "x-scheme-handler/org-protocol").
				Return(tt.handler, tt.err)

			got := NewRegistrationCheck("org-protocol.desktop", r).Run(context.Background())
			if got.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", got.Status, tt.want, got.Message)
			}
		})
	}
}

func TestHelperBundleCheck(t *testing.T) {
	declared, err := plist.Rewrite([]byte(minimalPlist))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		plist string // empty means the bundle has no Info.plist
		want  Severity
	}{
		{"declares scheme", string(declared), SeverityPass},
		{"missing scheme", minimalPlist, SeverityWarning},
		{"malformed", "<plist><dict>", SeverityError},
		{"no Info.plist", "", SeverityError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := filepath.Join(t.TempDir(), "OrgProtocolClient.app")
			contents := filepath.Join(bundle, "Contents")
			if err := os.MkdirAll(contents, 0o755); err != nil {
				t.Fatal(err)
			}
			if tt.plist != "" {
				if err := os.WriteFile(filepath.Join(contents, "Info.plist"), []byte(tt.plist), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			got := NewHelperBundleCheck(bundle).Run(context.Background())
			if got.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", got.Status, tt.want, got.Message)
			}
		})
	}

	t.Run("not installed", func(t *testing.T) {
		got := NewHelperBundleCheck(filepath.Join(t.TempDir(), "OrgProtocolClient.app")).Run(context.Background())
		if got.Status != SeverityInfo {
			t.Errorf("Status = %v, want info", got.Status)
		}
	})
}
