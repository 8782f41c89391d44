// Package config builds the validated configuration value handed to the
// installers, using Viper for defaults, environment variables and an
// optional config file.
package config

import (
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/paths"
)

// EnvPrefix is prepended to environment variable names, so
// macos.emacsclient_path is read from ORG_PROTOCOL_MACOS_EMACSCLIENT_PATH.
const EnvPrefix = "ORG_PROTOCOL"

// Viper keys.
const (
	KeyDesktopEntryDirectory = "linux.desktop_entry_directory"
	KeyDesktopFileName       = "linux.desktop_file_name"
	KeyEmacsclientPath       = "macos.emacsclient_path"
	KeyLaunchAfterInstall    = "macos.launch_after_install"
	KeyBundlePath            = "macos.bundle_path"
)

// Target selects the platform installer.
type Target string

const (
	TargetLinux Target = paths.TargetLinux
	TargetMacOS Target = paths.TargetMacOS
)

// Mode selects the installer operation.
type Mode string

const (
	ModeInstall   Mode = "install"
	ModeUninstall Mode = "uninstall"
)

// ParseMode converts a command-line mode argument.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeInstall, ModeUninstall:
		return Mode(s), nil
	}
	return "", errors.WithHint(
		errors.Mark(errors.Newf("unknown mode %q", s), errors.ErrConfiguration),
		"Mode must be one of: install, uninstall",
	)
}

// ParseTarget converts a command-line target name.
func ParseTarget(s string) (Target, error) {
	if !paths.ValidTarget(s) {
		return "", errors.WithHint(
			errors.Mark(errors.Newf("unknown target %q", s), errors.ErrConfiguration),
			"Target must be one of: "+strings.Join(paths.Targets(), ", "),
		)
	}
	return Target(s), nil
}

// LinuxConfig configures the desktop entry installer.
type LinuxConfig struct {
	DesktopEntryDirectory string `mapstructure:"desktop_entry_directory" yaml:"desktop_entry_directory" toml:"desktop_entry_directory"`
	DesktopFileName       string `mapstructure:"desktop_file_name" yaml:"desktop_file_name" toml:"desktop_file_name"`
}

// DesktopFilePath returns the full path of the desktop entry file. Trailing
// separators on the directory do not matter.
func (c *LinuxConfig) DesktopFilePath() string {
	return filepath.Join(c.DesktopEntryDirectory, c.DesktopFileName)
}

// MacOSConfig configures the helper application installer.
type MacOSConfig struct {
	EmacsclientPath string `mapstructure:"emacsclient_path" yaml:"emacsclient_path" toml:"emacsclient_path"`

	// LaunchAfterInstall opens the helper app once after install so Launch
	// Services picks up the URL scheme. Off by default; the operator is told
	// to launch it instead.
	LaunchAfterInstall bool `mapstructure:"launch_after_install" yaml:"launch_after_install" toml:"launch_after_install"`

	BundlePath string `mapstructure:"bundle_path" yaml:"bundle_path" toml:"bundle_path"`
}

// Settings is everything read from defaults, the config file, the
// environment and bound flags, before a target is chosen.
type Settings struct {
	Linux LinuxConfig `mapstructure:"linux" yaml:"linux" toml:"linux"`
	MacOS MacOSConfig `mapstructure:"macos" yaml:"macos" toml:"macos"`
}

// Config is the validated value consumed by exactly one installer. Exactly
// one of Linux and MacOS is set, matching Target.
type Config struct {
	Target Target
	Mode   Mode
	Linux  *LinuxConfig
	MacOS  *MacOSConfig
}

// New builds a Config for target from settings and validates it.
func New(target Target, mode Mode, s *Settings) (*Config, error) {
	if s == nil {
		s = &Settings{}
	}

	cfg := &Config{Target: target, Mode: mode}
	switch target {
	case TargetLinux:
		linux := s.Linux
		cfg.Linux = &linux
	case TargetMacOS:
		mac := s.MacOS
		cfg.MacOS = &mac
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.AppConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyDesktopEntryDirectory, paths.DesktopEntryDir())
	viper.SetDefault(KeyDesktopFileName, paths.DefaultDesktopFileName)
	viper.SetDefault(KeyEmacsclientPath, lookupEmacsclient())
	viper.SetDefault(KeyLaunchAfterInstall, false)
	viper.SetDefault(KeyBundlePath, paths.DefaultHelperBundlePath)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found.
func Load(path string) (*Settings, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if path != "" {
				return nil, errors.Mark(errors.Wrapf(err, "config file not found at %s", path), errors.ErrConfiguration)
			}
		} else {
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrConfiguration)
		}
	}

	return Current()
}

// Current returns the settings as they stand now, including any flags bound
// since Load.
func Current() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrConfiguration)
	}
	return &s, nil
}

// lookupEmacsclient returns emacsclient's absolute path from PATH, or an
// empty string so validation can report it as missing.
func lookupEmacsclient() string {
	p, err := exec.LookPath("emacsclient")
	if err != nil {
		return ""
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return ""
	}
	return abs
}
