// Package main is the entry point for the org-protocol-installer CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/org-protocol/cmd/org-protocol-installer/commands"
	"github.com/thoreinstein/org-protocol/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	exitErr := errors.FromError(err)
	if exitErr.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
	}
	if exitErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", exitErr.Suggestion)
	}
	os.Exit(exitErr.Code)
}
