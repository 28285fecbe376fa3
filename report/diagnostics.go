package report

import (
	"fmt"
	"strings"
)

// Severity is the severity of a diagnostic.
type Severity int

// Enumeration of diagnostic severities.
const (
	SeverityError Severity = iota
	SeverityWarning
)

// MessageKind classifies what a diagnostic is about.  It is used to build the
// banner displayed above the message ("Type Error", "Name Error", etc.).
type MessageKind int

// Enumeration of message kinds.
const (
	KindName MessageKind = iota
	KindType
	KindDef
	KindArg
	KindUsage
	KindOperator
	KindMember
	KindValue
	KindCodegen
)

var messageKindNames = map[MessageKind]string{
	KindName:     "Name",
	KindType:     "Type",
	KindDef:      "Definition",
	KindArg:      "Argument",
	KindUsage:    "Usage",
	KindOperator: "Operator",
	KindMember:   "Member",
	KindValue:    "Value",
	KindCodegen:  "Generation",
}

func (mk MessageKind) String() string {
	if name, ok := messageKindNames[mk]; ok {
		return name
	}

	return "Compile"
}

// Diagnostic is a single entry in the diagnostics log.
type Diagnostic struct {
	Severity Severity
	Kind     MessageKind
	Message  string

	// The span may be nil if no position information is available.
	Span *TextSpan
}

func (d Diagnostic) String() string {
	label := "error"
	if d.Severity == SeverityWarning {
		label = "warning"
	}

	return fmt.Sprintf("%s: %s %s: %s", d.Span, d.Kind, label, d.Message)
}

// Diagnostics is the ordered, append-only diagnostics log for one compilation
// unit.  It also carries the original source text so that spans can be
// rendered back to the user.  Compilation succeeds iff the log holds no errors.
type Diagnostics struct {
	// Source is the original source text of the compilation unit.  It may be
	// empty if the syntax tree was constructed without any source.
	Source string

	entries    []Diagnostic
	errorCount int
}

// NewDiagnostics creates a new, empty diagnostics log for the given source.
func NewDiagnostics(source string) *Diagnostics {
	return &Diagnostics{Source: source}
}

// Error appends a compilation error.
func (d *Diagnostics) Error(kind MessageKind, span *TextSpan, msg string, args ...interface{}) {
	d.entries = append(d.entries, Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(msg, args...),
		Span:     span,
	})
	d.errorCount++
}

// Warn appends a compilation warning.
func (d *Diagnostics) Warn(kind MessageKind, span *TextSpan, msg string, args ...interface{}) {
	d.entries = append(d.entries, Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		Message:  fmt.Sprintf(msg, args...),
		Span:     span,
	})
}

// Len returns the number of entries in the log.
func (d *Diagnostics) Len() int {
	return len(d.entries)
}

// Entries returns the entries of the log in the order they were reported.
func (d *Diagnostics) Entries() []Diagnostic {
	return d.entries
}

// ErrorCount returns the number of errors in the log.
func (d *Diagnostics) ErrorCount() int {
	return d.errorCount
}

// WarningCount returns the number of warnings in the log.
func (d *Diagnostics) WarningCount() int {
	return len(d.entries) - d.errorCount
}

// ShouldProceed indicates whether or not there have been any errors that
// should cause compilation to stop at the end of the current phase.
func (d *Diagnostics) ShouldProceed() bool {
	return d.errorCount == 0
}

// SpanText returns the source text covered by span, or the empty string if the
// span lies outside of the source.
func (d *Diagnostics) SpanText(span *TextSpan) string {
	if span == nil || d.Source == "" {
		return ""
	}

	lines := strings.Split(d.Source, "\n")
	if span.StartLine < 0 || span.EndLine >= len(lines) {
		return ""
	}

	var sb strings.Builder
	for ln := span.StartLine; ln <= span.EndLine; ln++ {
		line := lines[ln]

		start, end := 0, len(line)
		if ln == span.StartLine {
			start = span.StartCol
		}
		if ln == span.EndLine && span.EndCol+1 < end {
			end = span.EndCol + 1
		}
		if start > end {
			start = end
		}

		sb.WriteString(line[start:end])
		if ln != span.EndLine {
			sb.WriteRune('\n')
		}
	}

	return sb.String()
}
