package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/safedep/depwatch/policy"
)

// The UI is internal to depwatch and opinionated for the CLI.
// It is not intended to be used outside of depwatch.

type VerbosityLevel int

const (
	// Hidden from the user except for errors and denials.
	VerbosityLevelSilent VerbosityLevel = iota

	// Show minimal status updates.
	VerbosityLevelNormal

	// Show verbose status updates, including the reason and origin behind
	// every denial.
	VerbosityLevelVerbose
)

// Denial pairs a policy verdict with the operation it was evaluated
// against, which is all the denial banner (spec.md §7) needs to render.
type Denial struct {
	Operation policy.Operation
	Verdict   policy.Verdict
}

var verbosityLevel VerbosityLevel = VerbosityLevelNormal

func SetVerbosityLevel(level VerbosityLevel) {
	verbosityLevel = level
}

func ClearStatus() {
	StopSpinner()
	fmt.Print("\r")
}

// Block renders the spec.md §7 denial banner for one or more denied
// operations and exits with a non-zero status. This is the hard-block path
// (spec.md §4.3 strict mode, or any critical-severity denial).
func Block(denials []Denial) error {
	StopSpinner()

	fmt.Println()
	fmt.Println(Colors.Red(fmt.Sprintf("🛑 Firewall blocked %d operation(s)", len(denials))))

	printDenialList(denials)

	fmt.Println()
	os.Exit(1)

	return nil
}

func SetStatus(status string) {
	if verbosityLevel == VerbosityLevelSilent {
		return
	}

	StopSpinner()
	StartSpinnerWithColor(fmt.Sprintf("ℹ️ %s", status), Colors.Green)
}

// GetConfirmationOnDenial prompts the user to confirm continuing past a
// soft-block denial. It reads from os.Stdin; use the *WithReader variant
// for a PTY or test-provided reader.
func GetConfirmationOnDenial(denials []Denial) (bool, error) {
	return GetConfirmationOnDenialWithReader(denials, os.Stdin)
}

// GetConfirmationOnDenialWithReader prompts the user to confirm continuing
// past one or more firewall denials, reading the response from reader.
func GetConfirmationOnDenialWithReader(denials []Denial, reader io.Reader) (bool, error) {
	StopSpinner()

	fmt.Println()
	fmt.Println(Colors.Red(fmt.Sprintf("🚨 Firewall flagged %d operation(s)", len(denials))))

	printDenialList(denials)

	fmt.Println()
	fmt.Print(Colors.Yellow("Do you want to continue anyway? (y/N) "))

	// Use Scanner on the provided reader to support PTY input routing
	scanner := bufio.NewScanner(reader)
	if scanner.Scan() {
		response := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if response == "y" || response == "yes" || (len(response) > 0 && response[0] == 'y') {
			return true, nil
		}
	}

	// Check for scanner errors, but don't treat them as fatal
	if err := scanner.Err(); err != nil {
		// On EOF or interrupted read, just return false (deny)
		return false, nil
	}

	return false, nil
}

func ShowWarning(message string) {
	// Print colored warning to stderr immediately - it won't be cleared by other output
	fmt.Fprintf(os.Stderr, "%s\n", Colors.Red(message))
}

func Fatalf(msg string, args ...interface{}) {
	ClearStatus()

	fmt.Println(Colors.Red(fmt.Sprintf(msg, args...)))
	os.Exit(1)
}

func printDenialList(denials []Denial) {
	for _, d := range denials {
		fmt.Println()
		fmt.Println("⚠️ ", Colors.Red(fmt.Sprintf("%s: %s", d.Operation.Kind, d.Operation.Target)))

		if verbosityLevel == VerbosityLevelVerbose {
			fmt.Println(Colors.Yellow(termWidthFormatText(
				fmt.Sprintf("reason=%s severity=%s origin=%s", d.Verdict.Reason, d.Verdict.Severity, d.Operation.Origin.Name),
				80)))
		}

		if d.Verdict.Pattern != "" {
			fmt.Println()
			fmt.Println(Colors.Yellow(fmt.Sprintf("Matched pattern: %s", d.Verdict.Pattern)))
		}
	}
}

// Format the string to be maximum maxWidth. Use newlines to wrap the text.
func termWidthFormatText(text string, maxWidth int) string {
	// Replace all newlines with spaces so that we can split the text into words
	// This is to ensure that we don't split the text at the newlines
	text = strings.ReplaceAll(text, "\n", " ")

	words := strings.Split(text, " ")
	lines := []string{}
	currentLine := ""

	for i, word := range words {
		// Skip empty words that might result from multiple spaces
		if word == "" {
			continue
		}

		if i == 0 {
			// First word doesn't need a leading space
			currentLine = word
		} else if len(currentLine)+len(word)+1 > maxWidth {
			// +1 for the space we would add
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine += " " + word
		}
	}

	// Don't forget to add the last line
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n")
}
