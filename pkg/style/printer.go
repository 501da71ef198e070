package style

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Colorful reports whether styled output should be written to out.
// NO_COLOR, pipes, redirects and non-file writers all get plain text.
func Colorful(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}

	return termenv.ColorProfile() != termenv.Ascii
}

// Printer writes report lines, styling them only when out is a color terminal
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a printer for out
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, color: Colorful(out)}
}

// Render returns text in the named style, or unchanged for plain output
func (p *Printer) Render(name, text string) string {
	if !p.color {
		return text
	}
	return Render(name, text)
}

// Printf writes formatted text
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Line writes text in the named style followed by a newline
func (p *Printer) Line(name, text string) {
	_, _ = fmt.Fprintln(p.out, p.Render(name, text))
}
