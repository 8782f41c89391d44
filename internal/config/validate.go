package config

import (
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/org-protocol/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrMissingPlatformConfig indicates the sub-config for Target is absent.
	ErrMissingPlatformConfig = errors.New("platform configuration missing")

	// ErrConflictingPlatformConfig indicates a sub-config for another target is set.
	ErrConflictingPlatformConfig = errors.New("configuration for another platform is set")

	// ErrMissingEmacsclient indicates no emacsclient path was given or found.
	ErrMissingEmacsclient = errors.New("emacsclient path is required")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrRelativePath indicates a path that must be absolute is not.
	ErrRelativePath = errors.New("path must be absolute")

	// ErrInvalidFileName indicates a file name is empty or contains a separator.
	ErrInvalidFileName = errors.New("invalid file name")
)

// Validate checks the Config and returns a single error marked
// errors.ErrConfiguration describing every problem found, or nil.
func (c *Config) Validate() error {
	errs := Validate(c)
	if len(errs) == 0 {
		return nil
	}

	err := errors.Mark(
		errors.Wrap(stderrors.Join(errs...), "invalid configuration"),
		errors.ErrConfiguration,
	)
	for _, e := range errs {
		if stderrors.Is(e, ErrMissingEmacsclient) {
			err = errors.WithHint(err, "Pass --emacsclient /path/to/emacsclient or set ORG_PROTOCOL_MACOS_EMACSCLIENT_PATH")
			break
		}
	}
	return err
}

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{stderrors.New("config is nil")}
	}

	var errs []error

	if _, err := ParseTarget(string(cfg.Target)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		errs = append(errs, err)
	}

	switch cfg.Target {
	case TargetLinux:
		if cfg.MacOS != nil {
			errs = append(errs, &TargetError{Target: cfg.Target, Err: ErrConflictingPlatformConfig})
		}
		if cfg.Linux == nil {
			errs = append(errs, &TargetError{Target: cfg.Target, Err: ErrMissingPlatformConfig})
			break
		}
		errs = append(errs, validateLinux(cfg.Linux)...)
	case TargetMacOS:
		if cfg.Linux != nil {
			errs = append(errs, &TargetError{Target: cfg.Target, Err: ErrConflictingPlatformConfig})
		}
		if cfg.MacOS == nil {
			errs = append(errs, &TargetError{Target: cfg.Target, Err: ErrMissingPlatformConfig})
			break
		}
		errs = append(errs, validateMacOS(cfg.MacOS)...)
	}

	return errs
}

func validateLinux(c *LinuxConfig) []error {
	var errs []error

	if err := validateAbsPath(c.DesktopEntryDirectory); err != nil {
		errs = append(errs, &PathError{Field: "desktop_entry_directory", Path: c.DesktopEntryDirectory, Err: err})
	}

	name := c.DesktopFileName
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, '\x00') {
		errs = append(errs, &PathError{Field: "desktop_file_name", Path: name, Err: ErrInvalidFileName})
	}

	return errs
}

func validateMacOS(c *MacOSConfig) []error {
	var errs []error

	if c.EmacsclientPath == "" {
		errs = append(errs, &PathError{Field: "emacsclient_path", Err: ErrMissingEmacsclient})
	} else if err := validateAbsPath(c.EmacsclientPath); err != nil {
		errs = append(errs, &PathError{Field: "emacsclient_path", Path: c.EmacsclientPath, Err: err})
	}

	if err := validateAbsPath(c.BundlePath); err != nil {
		errs = append(errs, &PathError{Field: "bundle_path", Path: c.BundlePath, Err: err})
	} else if !strings.HasSuffix(filepath.Clean(c.BundlePath), ".app") {
		errs = append(errs, &PathError{Field: "bundle_path", Path: c.BundlePath, Err: ErrInvalidPath})
	}

	return errs
}

// validateAbsPath checks that path is non-empty, well-formed and absolute.
// It does not check whether the path exists.
func validateAbsPath(path string) error {
	if path == "" || strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	if !filepath.IsAbs(path) {
		return ErrRelativePath
	}
	return nil
}

// TargetError represents an error for a specific target.
type TargetError struct {
	Target Target
	Err    error
}

func (e *TargetError) Error() string {
	return string(e.Target) + ": " + e.Err.Error()
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Field + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
