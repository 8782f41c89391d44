package doctor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thoreinstein/org-protocol/internal/errors"
)

// Fixer is an optional interface that checks can implement to support auto-remediation.
// Checks that implement Fixer can fix issues they detect when the --fix flag is used.
type Fixer interface {
	// CanFix returns true if this check has fixable issues.
	// Must be called after Run() to check if there are issues that can be fixed.
	CanFix() bool

	// Fix attempts to remediate the issues found by Run().
	// Must be called after Run().
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	// Path is the file or directory that was targeted for fixing.
	Path string `json:"path"`

	// Fixed indicates whether the fix was successfully applied.
	Fixed bool `json:"fixed"`

	// Description explains what was fixed or why it couldn't be fixed.
	Description string `json:"description"`

	// Error contains the error if the fix failed.
	Error error `json:"-"`
}

// PermissionFixer repairs permission issues found by PathPermissionCheck.
// World-writable paths lose the other-write bit and unreadable files gain
// owner read. Directories are fixed recursively, so a helper bundle is
// repaired along with everything inside it. Other bits, executable bits
// included, are left alone.
type PermissionFixer struct {
	issues []pathIssue
}

// CanFix returns true if there are any fixable permission issues.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable returns the number of fixable issues.
func (f *PermissionFixer) CountFixable() int {
	count := 0
	for _, issue := range f.issues {
		if issue.Fixable {
			count++
		}
	}
	return count
}

// Fix attempts to fix all fixable permission issues.
// Returns a FixResult for each fixable issue.
func (f *PermissionFixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, issue := range f.issues {
		if !issue.Fixable {
			continue
		}
		results = append(results, f.fixIssue(issue))
	}
	return results
}

// fixIssue attempts to fix a single permission issue.
func (f *PermissionFixer) fixIssue(issue pathIssue) FixResult {
	result := FixResult{Path: issue.Path}

	var changed int
	var err error
	switch issue.Type {
	case "file":
		changed, err = repairMode(issue.Path)
	case "directory":
		err = filepath.WalkDir(issue.Path, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			n, err := repairMode(p)
			changed += n
			return err
		})
	default:
		result.Description = "unknown type: " + issue.Type
		result.Error = errors.Newf("cannot fix unknown type: %s", issue.Type)
		return result
	}

	if err != nil {
		result.Description = fmt.Sprintf("failed to repair permissions: %v", err)
		result.Error = errors.Wrapf(err, "repairing permissions of %s", issue.Path)
		return result
	}

	result.Fixed = true
	result.Description = fmt.Sprintf("repaired permissions on %d path(s)", changed)
	return result
}

// repairMode clears the other-write bit on path and makes regular files
// owner-readable. It reports 1 if the mode changed.
func repairMode(path string) (int, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}

	perm := info.Mode().Perm()
	want := perm &^ 0o002
	if info.Mode().IsRegular() {
		want |= 0o400
	}
	if info.IsDir() {
		want |= 0o700
	}
	if want == perm {
		return 0, nil
	}
	if err := os.Chmod(path, want); err != nil {
		return 0, err
	}
	return 1, nil
}

// setIssues stores the issues found by the check for later fixing.
// This is called internally by PathPermissionCheck after running.
func (f *PermissionFixer) setIssues(issues []pathIssue) {
	f.issues = issues
}
