package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const wrapWidth = 100

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

// Printer writes loop output. With Markdown enabled analyses are rendered for
// the terminal; otherwise they are printed verbatim.
type Printer struct {
	out      io.Writer
	markdown bool
	renderer *glamour.TermRenderer
}

func NewPrinter(out io.Writer, markdown bool) *Printer {
	p := &Printer{out: out, markdown: markdown}
	if markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrapWidth),
		)
		if err == nil {
			p.renderer = r
		}
	}
	return p
}

// Banner prints the application header and usage instructions.
func (p *Printer) Banner() {
	fmt.Fprintln(p.out, p.style(titleStyle, "\n=== Interview Insights App ==="))
	fmt.Fprintln(p.out, "Analyze interview notes and get insights & recommendations")
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Instructions:")
	fmt.Fprintln(p.out, p.style(dimStyle, "- Type your interview notes (one message per line)"))
	fmt.Fprintln(p.out, p.style(dimStyle, "- Type 'analyze' on a new line to get insights"))
	fmt.Fprintln(p.out, p.style(dimStyle, "- Type 'clear' to start fresh"))
	fmt.Fprintln(p.out, p.style(dimStyle, "- Type 'exit' to quit"))
	fmt.Fprintln(p.out)
}

func (p *Printer) Notice(msg string) {
	fmt.Fprintf(p.out, "%s\n\n", msg)
}

func (p *Printer) Reply(text string) {
	fmt.Fprintf(p.out, "%s %s\n\n", p.style(assistantStyle, "Assistant:"), text)
}

func (p *Printer) Analysis(text string) {
	fmt.Fprintf(p.out, "\n%s\n%s\n", p.style(titleStyle, "Analysis:"), p.Render(text))
}

func (p *Printer) Failure(err error) {
	fmt.Fprintf(p.out, "%s %v\n\n", p.style(errorStyle, "Error:"), err)
}

// Render formats markdown for the terminal, falling back to the raw text.
func (p *Printer) Render(text string) string {
	if p.renderer == nil {
		return text
	}
	rendered, err := p.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.markdown {
		return text
	}
	return s.Render(text)
}
