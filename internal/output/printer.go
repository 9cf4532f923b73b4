package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// ansiString is text we styled ourselves; it is printed as-is.
type ansiString string

// Printer writes terminal-safe output, sanitizing string-like arguments
// (string, []byte, error, fmt.Stringer) and optionally applying styles.
type Printer struct {
	w     io.Writer
	color bool
}

func NewPrinter(w io.Writer, color bool) Printer {
	return Printer{w: w, color: color}
}

// Style sanitizes text and renders it with st when color is enabled.
func (p Printer) Style(st lipgloss.Style, text string) ansiString {
	text = SanitizeCell(text)
	if !p.color {
		return ansiString(text)
	}
	return ansiString(st.Render(text))
}

func (p Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, sanitizePrintArgs(args)...)
}

func (p Printer) Print(args ...any) {
	fmt.Fprint(p.w, sanitizePrintArgs(args)...)
}

func (p Printer) Println(args ...any) {
	fmt.Fprintln(p.w, sanitizePrintArgs(args)...)
}

func sanitizePrintArgs(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case ansiString:
			out[i] = string(v)
		case string:
			out[i] = SanitizeTerminal(v)
		case []byte:
			out[i] = SanitizeTerminal(string(v))
		case error:
			out[i] = SanitizeTerminal(v.Error())
		case fmt.Stringer:
			out[i] = SanitizeTerminal(v.String())
		default:
			out[i] = a
		}
	}
	return out
}
