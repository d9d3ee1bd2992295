package errors

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[90m"
	colorBold   = "\033[1m"
)

// Formatter renders errors with optional color.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool

	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer

	// Indent is the prefix for context and suggestion lines.
	Indent string
}

// DefaultFormatter returns a Formatter for stderr, colored when stderr is a terminal.
func DefaultFormatter() *Formatter {
	return &Formatter{
		UseColor: IsTTY(os.Stderr),
		Writer:   os.Stderr,
		Indent:   "  ",
	}
}

// IsTTY returns true if f is a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Format renders err. HeddleErrors include code, context, cause and suggestions.
func (f *Formatter) Format(err error) string {
	if err == nil {
		return ""
	}
	he, ok := AsHeddleError(err)
	if !ok {
		return f.paint(colorRed, "Error: ") + err.Error()
	}

	var sb strings.Builder
	sb.WriteString(f.paint(colorRed+colorBold, "ERROR"))
	sb.WriteString(f.paint(colorRed, " ["+he.Code+"]: "))
	sb.WriteString(he.Message)
	sb.WriteString("\n")

	keys := make([]string, 0, len(he.Context))
	for k := range he.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteString(f.Indent)
		sb.WriteString(f.paint(colorYellow, key+": "))
		sb.WriteString(he.Context[key])
		sb.WriteString("\n")
	}

	if he.Cause != nil {
		sb.WriteString(f.Indent)
		sb.WriteString(f.paint(colorDim, "cause: "+he.Cause.Error()))
		sb.WriteString("\n")
	}

	if he.HasSuggestions() {
		if he.HasContext() || he.Cause != nil {
			sb.WriteString("\n")
		}
		for i, s := range he.Suggestions {
			sb.WriteString(f.Indent)
			sb.WriteString(f.paint(colorCyan, "→ "+s))
			if i < len(he.Suggestions)-1 {
				sb.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (f *Formatter) paint(color, s string) string {
	if !f.UseColor {
		return s
	}
	return color + s + colorReset
}

// Display writes the formatted error to the formatter's writer.
func (f *Formatter) Display(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(f.Writer, f.Format(err))
}

// Display writes a formatted error to stderr with default settings.
func Display(err error) {
	DefaultFormatter().Display(err)
}

// Sprint returns a formatted error string without colors.
func Sprint(err error) string {
	f := &Formatter{Writer: io.Discard, Indent: "  "}
	return f.Format(err)
}
