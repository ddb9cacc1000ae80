package errors

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// detailWidth is the wrap width of the detail block.
const detailWidth = 70

var (
	headerStyle = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	codeStyle   = pterm.NewStyle(pterm.FgWhite, pterm.Bold)
	causeStyle  = pterm.NewStyle(pterm.FgGray)
	hintStyle   = pterm.NewStyle(pterm.FgLightCyan)
)

// DisableColors turns off styling for Format and Fprint.
// It also affects every other pterm printer in the process.
func DisableColors() {
	pterm.DisableColor()
}

// EnableColors turns styling back on.
func EnableColors() {
	pterm.EnableColor()
}

// Format returns the error formatted for terminal display:
//
//	ERROR C201: Invalid credentials [auth]
//
//	  The authentication service rejected the username or password.
//
//	  Cause: ...
//	  Hint: ...
func (e *ConsoleError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(headerStyle.Sprint("ERROR "))
		b.WriteString(codeStyle.Sprint(e.Code + ": "))
	} else {
		b.WriteString(headerStyle.Sprint("ERROR: "))
	}
	b.WriteString(e.Message)
	if e.Category != "" {
		b.WriteString(" ")
		b.WriteString(causeStyle.Sprint("[" + string(e.Category) + "]"))
	}
	b.WriteString("\n\n")

	if lines := wrapText(e.Detail, detailWidth); len(lines) > 0 {
		for _, line := range lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s%s\n\n", causeStyle.Sprint("Cause: "), e.Wrapped.Error())
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", hintStyle.Sprint("Hint: "), e.Suggestion)
	}

	return b.String()
}

// FormatCompact returns the error on one line, for logs.
func (e *ConsoleError) FormatCompact() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += " (" + e.Wrapped.Error() + ")"
	}
	return msg
}

// wrapText breaks text on spaces so no line exceeds width, unless a single
// word is longer.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := []string{words[0]}
	for _, word := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(word) > width {
			lines = append(lines, word)
			continue
		}
		*last += " " + word
	}
	return lines
}

// Fprint writes err to w, in full for a ConsoleError and as a single
// ERROR line otherwise.
func Fprint(w io.Writer, err error) {
	var ce *ConsoleError
	if errors.As(err, &ce) {
		fmt.Fprint(w, ce.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", headerStyle.Sprint("ERROR:"), err.Error())
}

// PrintError prints err to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
