package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Status output goes to stderr so that -o json and -o yaml stay clean on stdout.

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	return s
}

func printHeader(title string, lines ...string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(os.Stderr)
	cyan.Fprintln(os.Stderr, title)
	for _, line := range lines {
		fmt.Fprintln(os.Stderr, line)
	}
	fmt.Fprintln(os.Stderr)
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}

func printWarning(msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(os.Stderr, "! %s\n", msg)
}
