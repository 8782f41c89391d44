// Package logging builds the slog loggers used by org-protocol-installer.
//
// Console output goes through [Handler], a compact colorized text handler, or
// through slog's JSON handler when --log-format=json is given. A log file,
// when requested, always receives JSON records so runs can be inspected
// after the fact.
//
//	logger, closer, err := logging.Setup(logging.Options{
//		Level:   logging.LevelFromVerbosity(2),
//		Format:  logging.FormatText,
//		Console: os.Stderr,
//		File:    "/tmp/org-protocol.log",
//	})
//	if err != nil {
//		return err
//	}
//	defer closer.Close()
//
// Installers receive their logger explicitly or through [FromContext]. Tests
// use [ForTest] so log lines show up next to the failing assertion.
package logging
