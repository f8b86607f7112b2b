package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Stdin, Stdout and Stderr are where the helpers talk to the user. Tests
// replace them.
var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// notice is one kind of one-line message. The glyphs match the ones the
// studio shows in its status line.
type notice struct {
	glyph string
	label string
	color lipgloss.Color
}

var (
	noticeDone    = notice{glyph: "✓", label: "done", color: lipgloss.Color("10")}
	noticeNote    = notice{glyph: "›", label: "note", color: lipgloss.Color("12")}
	noticeWarning = notice{glyph: "!", label: "warning", color: lipgloss.Color("11")}
	noticeError   = notice{glyph: "×", label: "error", color: lipgloss.Color("9")}
)

func (n notice) write(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if noColor {
		fmt.Fprintf(w, "%s: %s\n", n.label, msg)
		return
	}
	glyph := lipgloss.NewStyle().Bold(true).Foreground(n.color).Render(n.glyph)
	fmt.Fprintf(w, "%s %s\n", glyph, msg)
}

// Confirm asks a yes/no question on the terminal. --yes answers it.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	if skipConfirm {
		return true, nil
	}

	choices := "y/N"
	if defaultYes {
		choices = "Y/n"
	}
	fmt.Fprintf(Stdout, "%s (%s) ", prompt, choices)

	answer, err := bufio.NewReader(Stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// PrintSuccess reports a finished action. --quiet hides it.
func PrintSuccess(format string, args ...interface{}) {
	if !quiet {
		noticeDone.write(Stdout, format, args...)
	}
}

// PrintInfo prints a side note. --quiet hides it.
func PrintInfo(format string, args ...interface{}) {
	if !quiet {
		noticeNote.write(Stdout, format, args...)
	}
}

// PrintWarning goes to stderr even in quiet mode
func PrintWarning(format string, args ...interface{}) {
	noticeWarning.write(Stderr, format, args...)
}

func PrintError(format string, args ...interface{}) {
	noticeError.write(Stderr, format, args...)
}

// Set from the root command's persistent flags
var (
	quiet       bool
	noColor     bool
	skipConfirm bool
)

// SetGlobalFlags copies the root command's --quiet, --no-color and --yes
func SetGlobalFlags(q, nc, sc bool) {
	quiet = q
	noColor = nc
	skipConfirm = sc
}
