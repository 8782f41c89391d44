package commands

import (
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/org-protocol/internal/config"
	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/paths"
)

// action is one entry in the interactive picker.
type action struct {
	Label       string
	Description string
	Target      config.Target // empty for doctor
	Mode        config.Mode
}

// actions lists what can be picked, current platform first.
func actions(current string) []action {
	all := []action{
		{"linux install", "Write the desktop entry and register it with xdg-mime.", config.TargetLinux, config.ModeInstall},
		{"linux uninstall", "Remove the desktop entry.", config.TargetLinux, config.ModeUninstall},
		{"macos install", "Compile the helper application and declare the org-protocol scheme.", config.TargetMacOS, config.ModeInstall},
		{"macos uninstall", "Remove the helper application.", config.TargetMacOS, config.ModeUninstall},
		{"doctor", "Diagnose the installation on this machine.", "", ""},
	}

	sorted := make([]action, 0, len(all))
	for _, a := range all {
		if string(a.Target) == current {
			sorted = append(sorted, a)
		}
	}
	for _, a := range all {
		if string(a.Target) != current {
			sorted = append(sorted, a)
		}
	}
	return sorted
}

// findAction is replaced in tests.
var findAction = func(items []action) (int, error) {
	return fuzzyfinder.Find(
		items,
		func(i int) string { return items[i].Label },
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return items[i].Description
		}),
	)
}

func runInteractive(cmd *cobra.Command) error {
	items := actions(paths.CurrentTarget())

	idx, err := findAction(items)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "interactive selection failed")
	}

	picked := items[idx]
	fmt.Fprintf(progressWriter(cmd), "Running: %s\n", picked.Label)

	if picked.Target == "" {
		return runDoctor(cmd, nil)
	}
	return runTarget(cmd, picked.Target, string(picked.Mode))
}
