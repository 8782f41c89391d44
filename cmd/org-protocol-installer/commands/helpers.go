package commands

import (
	"github.com/fatih/color"

	"github.com/thoreinstein/org-protocol/internal/doctor"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	headingColor = color.New(color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	hintColor    = color.New(color.FgHiBlack)
)

func success(msg string) string {
	return successColor.Sprint("✓ ") + msg
}

func heading(msg string) string {
	return headingColor.Sprint(msg)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return successColor.Sprint("✓")
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return warnColor.Sprint("⚠")
	case doctor.SeverityError:
		return errorColor.Sprint("✗")
	default:
		return "?"
	}
}
