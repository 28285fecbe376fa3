package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a tagged Go error to the console.
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintInfoMessage prints a tagged informational message to the console.
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// -----------------------------------------------------------------------------

func displayICE(message string) {
	fmt.Print("\n\n")
	ErrorStyleBG.Print("Internal Compiler Error")
	ErrorColorFG.Println(" " + message)
	InfoColorFG.Println("This is a bug in the compiler, not in the program being compiled.")
}

// maxBannerWidth is the widest a diagnostic banner is drawn.
const maxBannerWidth = 50

// displayDiagnostic displays a compilation error or warning.  The banner
// names the message kind and the unit; the message and the selected source
// text follow it.
func displayDiagnostic(d Diagnostic, source, unitName string) {
	label, style := d.Kind.String()+" Warning", WarnStyleBG
	if d.Severity == SeverityError {
		label, style = d.Kind.String()+" Error", ErrorStyleBG
	}

	fmt.Print("\n\n-- ")
	style.Print(label)

	width := pterm.GetTerminalWidth() / 2
	if width > maxBannerWidth {
		width = maxBannerWidth
	}

	fill := width - len(unitName) - len(label) - 1
	if fill < 1 {
		fill = 1
	}
	fmt.Print(" " + strings.Repeat("-", fill) + " ")
	InfoColorFG.Println(unitName)

	if d.Span == nil {
		fmt.Println(d.Message)
		return
	}

	fmt.Printf("%d:%d: %s\n", d.Span.StartLine+1, d.Span.StartCol+1, d.Message)
	if source != "" {
		displaySourceText(source, d.Span)
	}
}

// displaySourceText displays the lines selected by a span with their line
// numbers, each underlined with carets where the span covers it.  Common
// indentation is trimmed.
func displaySourceText(source string, span *TextSpan) {
	all := strings.Split(source, "\n")
	if span.StartLine < 0 || span.StartLine > span.EndLine || span.EndLine >= len(all) {
		return
	}

	lines := make([]string, 0, span.EndLine-span.StartLine+1)
	indent := -1
	for _, line := range all[span.StartLine : span.EndLine+1] {
		line = strings.ReplaceAll(line, "\t", "    ")
		lines = append(lines, line)

		if n := len(line) - len(strings.TrimLeft(line, " ")); indent < 0 || n < indent {
			indent = n
		}
	}

	gutter := len(strconv.Itoa(span.EndLine + 1))

	fmt.Println()
	for i, line := range lines {
		InfoColorFG.Print(fmt.Sprintf("%-*d | ", gutter, span.StartLine+i+1))
		fmt.Println(line[indent:])

		start, end := 0, len(line)-indent
		if i == 0 {
			start = span.StartCol - indent
		}
		if i == len(lines)-1 && span.EndCol+1-indent < end {
			end = span.EndCol + 1 - indent
		}

		if start < 0 {
			start = 0
		}
		if end <= start {
			end = start + 1
		}

		fmt.Print(strings.Repeat(" ", gutter) + " | " + strings.Repeat(" ", start))
		ErrorColorFG.Println(strings.Repeat("^", end-start))
	}
}

// -----------------------------------------------------------------------------

// phaseDisplay is the spinner of a running compilation phase.
type phaseDisplay struct {
	name    string
	spinner *pterm.SpinnerPrinter
	started time.Time
}

// phaseColumn is the width phase names are padded to.
const phaseColumn = len("Evaluating") + 2

func phasePrinter(text string, style *pterm.Style) *pterm.PrefixPrinter {
	return &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: style, Text: text},
	}
}

func startPhase(name string) *phaseDisplay {
	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))
	spinner.SuccessPrinter = phasePrinter("Done", SuccessStyleBG)
	spinner.FailPrinter = phasePrinter("Fail", ErrorStyleBG)

	pd := &phaseDisplay{name: name, spinner: spinner}
	pd.spinner.Start(pd.padded() + "...")
	pd.started = time.Now()
	return pd
}

func (pd *phaseDisplay) padded() string {
	return fmt.Sprintf("%-*s", phaseColumn, pd.name)
}

func (pd *phaseDisplay) finish(success bool) {
	if success {
		pd.spinner.Success(pd.padded(), fmt.Sprintf("(%.3fs)", time.Since(pd.started).Seconds()))
	} else {
		pd.spinner.Fail(pd.padded())
	}
}

// displayCompilationFinished displays the closing summary of a compilation.
func displayCompilationFinished(success bool, errorCount, warningCount int) {
	fmt.Println()
	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")
	displayCount(errorCount, "error", ErrorColorFG)
	fmt.Print(", ")
	displayCount(warningCount, "warning", WarnColorFG)
	fmt.Println(")")
}

// displayCount displays a count of messages, coloured if it is non-zero.
func displayCount(n int, noun string, color pterm.Color) {
	if n == 0 {
		color = SuccessColorFG
	}

	color.Print(n)
	if n == 1 {
		fmt.Print(" " + noun)
	} else {
		fmt.Print(" " + noun + "s")
	}
}
