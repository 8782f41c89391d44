package config

import (
	"path/filepath"
	"slices"
	"strconv"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/paths"
	"github.com/thoreinstein/org-protocol/pkg/fileutil"
)

// FileName is the name of the config file inside the app config directory.
const FileName = "config.yaml"

// Format is an output encoding for settings.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DefaultFilePath returns where Save writes when no --config is given.
func DefaultFilePath() string {
	return filepath.Join(paths.AppConfigDir(), FileName)
}

// Keys returns every settable key in display order.
func Keys() []string {
	return []string{
		KeyDesktopEntryDirectory,
		KeyDesktopFileName,
		KeyEmacsclientPath,
		KeyLaunchAfterInstall,
		KeyBundlePath,
	}
}

// Encode renders s in the given format.
func Encode(s *Settings, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatYAML, "":
		data, err = yaml.Marshal(s)
	case FormatTOML:
		data, err = toml.Marshal(s)
	default:
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("unknown format %q", format), errors.ErrConfiguration),
			"Format must be one of: yaml, toml",
		)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encoding settings as %s", format)
	}
	return data, nil
}

// Set parses value for key and stores it in Viper, overriding every other
// source until the process exits.
func Set(key, value string) error {
	if !slices.Contains(Keys(), key) {
		return errors.WithHint(
			errors.Mark(errors.Newf("unknown key %q", key), errors.ErrConfiguration),
			"Run: org-protocol-installer config list",
		)
	}

	switch key {
	case KeyLaunchAfterInstall:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "%s must be true or false", key), errors.ErrConfiguration)
		}
		viper.Set(key, b)
		return nil
	case KeyDesktopFileName:
		c := &LinuxConfig{DesktopEntryDirectory: "/", DesktopFileName: value}
		if errs := validateLinux(c); len(errs) > 0 {
			return errors.Mark(errs[0], errors.ErrConfiguration)
		}
	default:
		if err := validateAbsPath(value); err != nil {
			return errors.Mark(&PathError{Field: key, Path: value, Err: err}, errors.ErrConfiguration)
		}
	}

	viper.Set(key, value)
	return nil
}

// Save writes s as YAML to path, creating the parent directory.
func Save(path string, s *Settings) error {
	data, err := Encode(s, FormatYAML)
	if err != nil {
		return err
	}
	if err := paths.EnsureDir(filepath.Dir(path), 0o755); err != nil {
		return errors.Mark(errors.Wrap(err, "creating config directory"), errors.ErrFilesystem)
	}
	if err := fileutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return errors.Mark(errors.Wrap(err, "writing config file"), errors.ErrFilesystem)
	}
	return nil
}
