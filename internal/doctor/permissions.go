package doctor

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
)

// PathPermissionCheck validates the directory an artifact is installed into
// and the artifact itself. Missing paths are skipped; the install status
// checks report those.
type PathPermissionCheck struct {
	PermissionFixer

	dir      string
	artifact string
}

var (
	_ Check = (*PathPermissionCheck)(nil)
	_ Fixer = (*PathPermissionCheck)(nil)
)

// NewPathPermissionCheck creates a check for artifact inside dir.
func NewPathPermissionCheck(dir, artifact string) *PathPermissionCheck {
	return &PathPermissionCheck{dir: dir, artifact: artifact}
}

// Name returns the unique identifier for this check.
func (c *PathPermissionCheck) Name() string {
	return "path-permissions"
}

// Category returns the grouping for this check.
func (c *PathPermissionCheck) Category() string {
	return "filesystem"
}

// Run executes the path and permission diagnostic check.
func (c *PathPermissionCheck) Run(_ context.Context) *CheckResult {
	var issues []pathIssue
	var checked int

	if c.dir != "" {
		if dirIssues, ok := c.checkDirectory(c.dir); ok {
			issues = append(issues, dirIssues...)
			checked++
		}
	}
	if c.artifact != "" {
		if artifactIssues, ok := c.checkArtifact(c.artifact); ok {
			issues = append(issues, artifactIssues...)
			checked++
		}
	}

	c.setIssues(issues)
	return c.buildResult(issues, checked)
}

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Type        string // "file" or "directory"
	Problem     string
	Severity    Severity
	Permissions string // octal representation if available
	Fixable     bool
	FixHint     string
}

// checkDirectory validates the install directory. ok is false when the
// directory does not exist.
func (c *PathPermissionCheck) checkDirectory(path string) (issues []pathIssue, ok bool) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false
	}
	if err != nil {
		return []pathIssue{{
			Path:     path,
			Type:     "directory",
			Problem:  fmt.Sprintf("cannot stat directory: %v", err),
			Severity: SeverityError,
		}}, true
	}

	if !info.IsDir() {
		return []pathIssue{{
			Path:     path,
			Type:     "directory",
			Problem:  "expected directory but found file",
			Severity: SeverityError,
		}}, true
	}

	if !isDirectoryWritable(path) {
		issues = append(issues, pathIssue{
			Path:        path,
			Type:        "directory",
			Problem:     "directory is not writable; install will fail",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + path + " or choose another location",
		})
	}

	issues = append(issues, worldWritable(path, "directory", info.Mode())...)
	return issues, true
}

// checkArtifact validates the installed desktop entry or bundle. ok is
// false when it does not exist.
func (c *PathPermissionCheck) checkArtifact(path string) (issues []pathIssue, ok bool) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false
	}
	if err != nil {
		return []pathIssue{{
			Path:     path,
			Type:     "file",
			Problem:  fmt.Sprintf("cannot stat: %v", err),
			Severity: SeverityError,
		}}, true
	}

	kind := "file"
	if info.IsDir() {
		kind = "directory"
	} else {
		f, err := os.Open(path)
		if err != nil {
			return []pathIssue{{
				Path:        path,
				Type:        kind,
				Problem:     "file is not readable",
				Severity:    SeverityError,
				Permissions: formatPermissions(info.Mode()),
				Fixable:     true,
				FixHint:     "chmod 644 " + path,
			}}, true
		}
		f.Close()
	}

	return worldWritable(path, kind, info.Mode()), true
}

// worldWritable flags a path anyone can modify. A world-writable desktop
// entry or bundle lets other users change the command URLs are passed to.
func worldWritable(path, kind string, mode os.FileMode) []pathIssue {
	if runtime.GOOS == "windows" || mode.Perm()&0o002 == 0 {
		return nil
	}

	hint := "chmod 644 " + path
	if kind == "directory" {
		hint = "chmod 755 " + path
	}
	return []pathIssue{{
		Path:        path,
		Type:        kind,
		Problem:     kind + " is world-writable (security risk)",
		Severity:    SeverityWarning,
		Permissions: formatPermissions(mode),
		Fixable:     true,
		FixHint:     hint,
	}}
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func isDirectoryWritable(path string) bool {
	tmpFile, err := os.CreateTemp(path, ".org-protocol-doctor-*")
	if err != nil {
		return false
	}

	tmpPath := tmpFile.Name()
	tmpFile.Close()
	os.Remove(tmpPath)
	return true
}

// buildResult constructs the final CheckResult from accumulated issues.
func (c *PathPermissionCheck) buildResult(issues []pathIssue, checked int) *CheckResult {
	if len(issues) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("all %d paths have valid permissions", checked),
		}
	}

	highestSeverity := SeverityPass
	for _, issue := range issues {
		if issue.Severity > highestSeverity {
			highestSeverity = issue.Severity
		}
	}

	issueDetails := make([]map[string]any, 0, len(issues))
	var fixable bool
	var fixHints []string
	for _, issue := range issues {
		issueMap := map[string]any{
			"path":     issue.Path,
			"type":     issue.Type,
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			issueMap["permissions"] = issue.Permissions
		}
		if issue.FixHint != "" {
			issueMap["fix_hint"] = issue.FixHint
			fixHints = append(fixHints, issue.FixHint)
		}
		issueDetails = append(issueDetails, issueMap)
		fixable = fixable || issue.Fixable
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   highestSeverity,
		Message:  fmt.Sprintf("found %d permission issue(s) across %d paths", len(issues), checked),
		Details: map[string]any{
			"checked_paths": checked,
			"issue_count":   len(issues),
			"issues":        issueDetails,
		},
		Fixable: fixable,
	}
	if len(fixHints) > 0 {
		result.FixHint = strings.Join(fixHints, "; ")
	}
	return result
}

// formatPermissions returns the octal representation of file permissions.
func formatPermissions(mode os.FileMode) string {
	return formatOctal(mode.Perm())
}

// formatOctal formats a file mode as a 4-digit octal string.
func formatOctal(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode)
}
