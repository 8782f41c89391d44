// Package doctor diagnoses an org-protocol handler installation.
//
// Checks cover the external tools the installers shell out to, the
// emacsclient binary the handler forwards URLs to, the installed artifacts
// themselves and the permissions of the paths they live in. [ForTarget]
// assembles the checks for one platform:
//
//	r := doctor.NewRunner(doctor.ForTarget(config.TargetLinux, settings, runner)...)
//	report := r.Run(ctx)
//	if report.HasErrors() {
//	    // ...
//	}
//
// Checks that can repair what they find also implement [Fixer].
package doctor
