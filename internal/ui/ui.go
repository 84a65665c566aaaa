// Package ui provides terminal output helpers for tilefetch: coloured
// status lines, the region progress bar and the end-of-run summary table.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

var (
	Success = color.New(color.FgGreen).SprintFunc()
	Error   = color.New(color.FgRed).SprintFunc()
	Warning = color.New(color.FgYellow).SprintFunc()
	Info    = color.New(color.FgCyan).SprintFunc()
	Bold    = color.New(color.Bold).SprintFunc()
	Dim     = color.New(color.Faint).SprintFunc()

	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠️"
	IconInfo    = "ℹ️"
)

// Out is where all ui output goes.
var Out io.Writer = os.Stdout

// Verbose enables PrintVerbose output.
var Verbose bool

func PrintSuccess(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(Out, "%s %s\n", Success(IconSuccess), msg)
}

func PrintError(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(Out, "%s %s\n", Error(IconError), msg)
}

func PrintWarning(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(Out, "%s  %s\n", Warning(IconWarning), msg)
}

func PrintInfo(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(Out, "%s  %s\n", Info(IconInfo), msg)
}

// PrintVerbose prints only when Verbose is set.
func PrintVerbose(format string, a ...interface{}) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Out, "  %s\n", Dim(fmt.Sprintf(format, a...)))
}

func PrintDim(format string, a ...interface{}) {
	fmt.Fprintf(Out, "  %s\n", Dim(fmt.Sprintf(format, a...)))
}

func PrintHeader(text string) {
	fmt.Fprintln(Out, Bold(text))
}

func PrintSectionHeader(emoji, text string) {
	fmt.Fprintf(Out, "\n%s %s\n", emoji, Bold(text))
}

// NewProgressBar returns a bar counting regions. It renders on stderr so
// stdout stays clean for piping.
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ShowProgress reports whether the progress bar should be drawn: not in
// verbose mode, and only on an interactive stderr.
func ShowProgress() bool {
	return !Verbose && IsTerminal(os.Stderr)
}

func PrintDivider() {
	fmt.Fprintln(Out, Dim(strings.Repeat("━", 50)))
}

// Row is one key/value line of a summary table.
type Row struct {
	Key   string
	Value string
}

// PrintSummaryTable prints rows in order with aligned values.
func PrintSummaryTable(rows []Row) {
	maxKeyLen := 0
	for _, r := range rows {
		if len(r.Key) > maxKeyLen {
			maxKeyLen = len(r.Key)
		}
	}

	PrintDivider()
	for _, r := range rows {
		padding := strings.Repeat(" ", maxKeyLen-len(r.Key))
		fmt.Fprintf(Out, "  %s:%s %s\n", Bold(r.Key), padding, r.Value)
	}
	PrintDivider()
}

// PrintErrorWithSolution prints an error with a suggested fix.
func PrintErrorWithSolution(problem, solution, alternative string) {
	fmt.Fprintln(Out)
	PrintError("%s", problem)
	if solution != "" {
		fmt.Fprintf(Out, "🔧 %s: %s\n", Bold("Solution"), solution)
	}
	if alternative != "" {
		fmt.Fprintf(Out, "💡 %s: %s\n", Bold("Alternative"), alternative)
	}
	fmt.Fprintln(Out)
}

// TruncateMiddle shortens s to maxLen by eliding its middle.
func TruncateMiddle(s string, maxLen int) string {
	if len(s) <= maxLen || maxLen < 5 {
		return s
	}
	half := (maxLen - 3) / 2
	return s[:half] + "..." + s[len(s)-(maxLen-3-half):]
}
