// Package console implements terminal input and output for the chat loop.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"

	"github.com/spigell/interview-insights/internal/session"
)

const (
	promptLabel = "You"
	// maxLineBytes allows pasting long interview notes as one line.
	maxLineBytes = 1024 * 1024
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// NewLineReader returns a promptui-backed reader for terminals and a buffered
// line reader for pipes and files.
func NewLineReader(in *os.File, out io.Writer) session.LineReader {
	if IsTerminal(in) {
		return &PromptReader{label: promptLabel}
	}
	return NewScannerReader(in, out)
}

var (
	_ session.LineReader = (*PromptReader)(nil)
	_ session.LineReader = (*ScannerReader)(nil)
	_ session.Output     = (*Printer)(nil)
)

// PromptReader reads one line per call through promptui.
type PromptReader struct {
	label string
}

func (r *PromptReader) ReadLine(context.Context) (string, error) {
	prompt := promptui.Prompt{Label: r.label}

	line, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", io.EOF
	}
	return line, err
}

// ScannerReader reads newline-separated input and echoes a prompt to out.
type ScannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewScannerReader(in io.Reader, out io.Writer) *ScannerReader {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &ScannerReader{scanner: scanner, out: out}
}

func (r *ScannerReader) ReadLine(context.Context) (string, error) {
	if r.out != nil {
		fmt.Fprintf(r.out, "%s: ", promptLabel)
	}

	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}
