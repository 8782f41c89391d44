package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/paths"
)

func TestInit(t *testing.T) {
	viper.Reset()

	Init()

	if got := viper.GetString(KeyDesktopFileName); got != "org-protocol.desktop" {
		t.Errorf("desktop_file_name default = %q, want %q", got, "org-protocol.desktop")
	}
	if got := viper.GetString(KeyDesktopEntryDirectory); got != paths.DesktopEntryDir() {
		t.Errorf("desktop_entry_directory default = %q, want %q", got, paths.DesktopEntryDir())
	}
	if got := viper.GetString(KeyBundlePath); got != paths.DefaultHelperBundlePath {
		t.Errorf("bundle_path default = %q, want %q", got, paths.DefaultHelperBundlePath)
	}
	if viper.GetBool(KeyLaunchAfterInstall) {
		t.Error("launch_after_install should default to false")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())

	Init()

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if s.Linux.DesktopFileName != "org-protocol.desktop" {
		t.Errorf("DesktopFileName = %q, want default", s.Linux.DesktopFileName)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte(`linux:
  desktop_entry_directory: /tmp/x
  desktop_file_name: test.desktop
macos:
  emacsclient_path: /opt/homebrew/bin/emacsclient
  launch_after_install: true
`)
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		t.Fatal(err)
	}

	Init()

	s, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Linux.DesktopEntryDirectory != "/tmp/x" {
		t.Errorf("DesktopEntryDirectory = %q, want /tmp/x", s.Linux.DesktopEntryDirectory)
	}
	if s.Linux.DesktopFileName != "test.desktop" {
		t.Errorf("DesktopFileName = %q, want test.desktop", s.Linux.DesktopFileName)
	}
	if s.MacOS.EmacsclientPath != "/opt/homebrew/bin/emacsclient" {
		t.Errorf("EmacsclientPath = %q", s.MacOS.EmacsclientPath)
	}
	if !s.MacOS.LaunchAfterInstall {
		t.Error("LaunchAfterInstall should be true")
	}
	if s.MacOS.BundlePath != paths.DefaultHelperBundlePath {
		t.Errorf("BundlePath = %q, want default", s.MacOS.BundlePath)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("ORG_PROTOCOL_MACOS_EMACSCLIENT_PATH", "/usr/local/bin/emacsclient")

	Init()

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.MacOS.EmacsclientPath != "/usr/local/bin/emacsclient" {
		t.Errorf("EmacsclientPath = %q, want env value", s.MacOS.EmacsclientPath)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	viper.Reset()
	Init()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() with missing explicit path should error")
	}
	if !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("error should be marked ErrConfiguration: %v", err)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	viper.Reset()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("linux: [unclosed\n"), 0600); err != nil {
		t.Fatal(err)
	}

	Init()

	if _, err := Load(configPath); err == nil {
		t.Error("Load() with malformed YAML should error")
	}
}

func TestLinuxConfig_DesktopFilePath(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"no trailing separator", "/tmp/x", "/tmp/x/test.desktop"},
		{"trailing separator", "/tmp/x/", "/tmp/x/test.desktop"},
		{"doubled separator", "/tmp/x//", "/tmp/x/test.desktop"},
		{"relative directory", "directory", "directory/test.desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &LinuxConfig{DesktopEntryDirectory: tt.dir, DesktopFileName: "test.desktop"}
			if got := c.DesktopFilePath(); got != filepath.FromSlash(tt.want) {
				t.Errorf("DesktopFilePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"install", ModeInstall, false},
		{"uninstall", ModeUninstall, false},
		{"unknown", "", true},
		{"", "", true},
		{"INSTALL", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if err != nil && !errors.Is(err, errors.ErrConfiguration) {
				t.Errorf("error should be marked ErrConfiguration: %v", err)
			}
		})
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"linux", TargetLinux, false},
		{"macos", TargetMacOS, false},
		{"invalid", "", true},
		{"darwin", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTarget(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	settings := &Settings{
		Linux: LinuxConfig{DesktopEntryDirectory: "/tmp/x", DesktopFileName: "test.desktop"},
		MacOS: MacOSConfig{EmacsclientPath: "/usr/local/bin/emacsclient", BundlePath: paths.DefaultHelperBundlePath},
	}

	t.Run("linux selects only the linux sub-config", func(t *testing.T) {
		cfg, err := New(TargetLinux, ModeInstall, settings)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if cfg.Linux == nil || cfg.MacOS != nil {
			t.Fatalf("New() = %+v, want only Linux set", cfg)
		}
		if cfg.Linux.DesktopFilePath() != "/tmp/x/test.desktop" {
			t.Errorf("DesktopFilePath() = %q", cfg.Linux.DesktopFilePath())
		}
	})

	t.Run("macos selects only the macos sub-config", func(t *testing.T) {
		cfg, err := New(TargetMacOS, ModeUninstall, settings)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if cfg.MacOS == nil || cfg.Linux != nil {
			t.Fatalf("New() = %+v, want only MacOS set", cfg)
		}
	})

	t.Run("sub-config is copied", func(t *testing.T) {
		cfg, err := New(TargetLinux, ModeInstall, settings)
		if err != nil {
			t.Fatal(err)
		}
		cfg.Linux.DesktopFileName = "changed.desktop"
		if settings.Linux.DesktopFileName != "test.desktop" {
			t.Error("New() should not alias the settings value")
		}
	})

	t.Run("missing emacsclient is a configuration error", func(t *testing.T) {
		s := &Settings{MacOS: MacOSConfig{BundlePath: paths.DefaultHelperBundlePath}}
		_, err := New(TargetMacOS, ModeInstall, s)
		if err == nil {
			t.Fatal("New() expected error for empty emacsclient path")
		}
		if !errors.Is(err, errors.ErrConfiguration) {
			t.Errorf("error should be marked ErrConfiguration: %v", err)
		}
		if len(errors.Hints(err)) == 0 {
			t.Error("missing emacsclient should carry a hint")
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := New(Target("windows"), ModeInstall, settings)
		if !errors.Is(err, errors.ErrConfiguration) {
			t.Errorf("New() error = %v, want ErrConfiguration", err)
		}
	})
}
