package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/org-protocol/internal/config"
	"github.com/thoreinstein/org-protocol/internal/doctor"
	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/logging"
	"github.com/thoreinstein/org-protocol/internal/paths"
	"github.com/thoreinstein/org-protocol/internal/runner"
)

var (
	doctorJSON   bool
	doctorAll    bool
	doctorFix    bool
	doctorTarget string
)

// newDoctorRunner is replaced in tests.
var newDoctorRunner = func(target config.Target, s *config.Settings, r runner.Runner) *doctor.Runner {
	return doctor.NewRunner(doctor.ForTarget(target, s, r)...)
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show every check, including passed ones")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"repair permission problems that can be fixed automatically")
	doctorCmd.Flags().StringVar(&doctorTarget, "target", "",
		"platform to check: linux, macos (default: current OS)")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the org-protocol handler installation",
	Long: `Run diagnostic checks for the current platform.

Checks that the tools the installer needs are on PATH, that emacsclient
can be found, whether the handler is installed and registered, and that
the install locations have sane permissions.

Output modes:
  (default)   Show errors and warnings
  --all       Show all checks including passed ones
  --json      Machine-readable JSON output
  --quiet     No output, exit code only

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Check this machine
  org-protocol-installer doctor

  # Check a macOS install from a script
  org-protocol-installer doctor --target macos --json

  # Repair world-writable files
  org-protocol-installer doctor --fix`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	target, err := doctorTargetFor(doctorTarget)
	if err != nil {
		return err
	}

	settings, err := config.Current()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	r := newDoctorRunner(target, settings, runner.New(logger))
	report := r.Run(ctx)
	report.Target = string(target)

	w := cmd.OutOrStdout()
	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	if doctorFix {
		report = applyFixes(ctx, w, r, report)
	}

	switch report.Summary.Worst() {
	case doctor.SeverityError:
		return errors.NewExitError(nil, errors.ExitSystem)
	case doctor.SeverityWarning:
		return errors.NewExitError(nil, errors.ExitUser)
	}
	return nil
}

// doctorTargetFor resolves the --target flag, defaulting to the running OS.
func doctorTargetFor(flag string) (config.Target, error) {
	if flag != "" {
		return config.ParseTarget(flag)
	}
	current := paths.CurrentTarget()
	if current == "" {
		return "", errors.NewUserError(
			errors.New("no installer for this operating system"),
			"Pass --target linux or --target macos",
		)
	}
	return config.Target(current), nil
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport) error {
	if quiet {
		return nil
	}

	if doctorJSON {
		return outputDoctorJSON(w, report)
	}

	return outputDoctorText(w, report)
}

func outputDoctorJSON(w io.Writer, report *doctor.DoctorReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport) error {
	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !doctorAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  %s\n", hintColor.Sprint("hint: "+result.FixHint))
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary (%s): %d passed, %d info, %d warnings, %d errors\n",
		report.Target, report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)

	return nil
}

// applyFixes runs every Fixer with something to fix and re-runs the checks
// so the exit code reflects the repaired state.
func applyFixes(ctx context.Context, w io.Writer, r *doctor.Runner, report *doctor.DoctorReport) *doctor.DoctorReport {
	var fixed bool
	for _, check := range r.Checks() {
		fixer, ok := check.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}
		for _, res := range fixer.Fix() {
			fixed = true
			if quiet || doctorJSON {
				continue
			}
			if res.Fixed {
				fmt.Fprintf(w, "%s fixed %s: %s\n", statusIcon(doctor.SeverityPass), res.Path, res.Description)
			} else {
				fmt.Fprintf(w, "%s could not fix %s: %s\n", statusIcon(doctor.SeverityError), res.Path, res.Description)
			}
		}
	}

	if !fixed {
		return report
	}

	rerun := r.Run(ctx)
	rerun.Target = report.Target
	return rerun
}
