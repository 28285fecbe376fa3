package report

import (
	"fmt"
	"strings"
)

// Enumeration of the different log levels.
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and closing compilation notification (success/fail)
	LogLevelWarn           // errors, warnings, and closing message
	LogLevelVerbose        // errors, warnings, phase progress, closing message (DEFAULT)
)

var logLevelNames = map[string]int{
	"silent":  LogLevelSilent,
	"error":   LogLevelError,
	"warn":    LogLevelWarn,
	"verbose": LogLevelVerbose,
}

// LogLevelNames returns the names accepted by ParseLogLevel in order of
// increasing verbosity.
func LogLevelNames() []string {
	return []string{"silent", "error", "warn", "verbose"}
}

// ParseLogLevel converts a log level name into its log level.
func ParseLogLevel(name string) (int, error) {
	if level, ok := logLevelNames[strings.ToLower(name)]; ok {
		return level, nil
	}

	return 0, fmt.Errorf("unknown log level: `%s`", name)
}

// Reporter is responsible for displaying the output of a compilation to the
// user as determined by its log level.  The compiler packages themselves never
// print: they only append to a `Diagnostics` log which is handed to the
// reporter once a phase is finished.
type Reporter struct {
	LogLevel int

	// UnitName is the display name of the compilation unit.
	UnitName string

	// phase is the phase currently displayed, if any.
	phase *phaseDisplay
}

// NewReporter creates a new reporter for the named unit.
func NewReporter(unitName string, logLevel int) *Reporter {
	return &Reporter{LogLevel: logLevel, UnitName: unitName}
}

// BeginPhase displays the beginning of a compilation phase.
func (r *Reporter) BeginPhase(phase string) {
	if r.LogLevel == LogLevelVerbose {
		r.EndPhase(true)
		r.phase = startPhase(phase)
	}
}

// EndPhase displays the end of the current compilation phase.
func (r *Reporter) EndPhase(success bool) {
	if r.phase != nil {
		r.phase.finish(success)
		r.phase = nil
	}
}

// ReportDiagnostics displays all the entries of a diagnostics log that are
// permitted by the log level.  Errors are always displayed before warnings.
func (r *Reporter) ReportDiagnostics(diags *Diagnostics) {
	if r.LogLevel == LogLevelSilent || diags.Len() == 0 {
		return
	}

	r.EndPhase(diags.ShouldProceed())

	for _, d := range diags.Entries() {
		if d.Severity == SeverityError {
			displayDiagnostic(d, diags.Source, r.UnitName)
		}
	}

	if r.LogLevel >= LogLevelWarn {
		for _, d := range diags.Entries() {
			if d.Severity == SeverityWarning {
				displayDiagnostic(d, diags.Source, r.UnitName)
			}
		}
	}
}

// ReportICE displays an internal compiler error.
func (r *Reporter) ReportICE(err error) {
	r.EndPhase(false)

	if r.LogLevel > LogLevelSilent {
		displayICE(err.Error())
	}
}

// ReportFatal displays an error that prevented compilation from starting such
// as a malformed input file or profile.
func (r *Reporter) ReportFatal(tag string, err error) {
	r.EndPhase(false)

	if r.LogLevel > LogLevelSilent {
		PrintErrorMessage(tag, err)
	}
}

// ReportFinished displays the closing compilation message.
func (r *Reporter) ReportFinished(diags *Diagnostics) {
	r.EndPhase(diags.ShouldProceed())

	if r.LogLevel > LogLevelSilent {
		warnings := diags.WarningCount()
		if r.LogLevel < LogLevelWarn {
			warnings = 0
		}

		displayCompilationFinished(diags.ShouldProceed(), diags.ErrorCount(), warnings)
	}
}
