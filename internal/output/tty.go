// Package output renders command results for terminals and pipes.
package output

import (
	"io"
	"os"

	"golang.org/x/term"
)

const defaultWidth = 80

// IsTTY returns true if stdout is connected to a terminal.
// When false, output is being piped or redirected.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStdinTTY returns true if stdin is connected to a terminal.
func IsStdinTTY() bool {
	return IsTerminal(os.Stdin)
}

// IsTerminal reports whether r is a terminal. Readers that are not files
// never are.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// CanPrompt reports whether interactive prompts and the wizard can run:
// both stdin and stdout must be terminals.
func CanPrompt() bool {
	return IsStdinTTY() && IsTTY()
}

// Width returns the stdout terminal width, or 80 when unknown.
func Width() int {
	if !IsTTY() {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
