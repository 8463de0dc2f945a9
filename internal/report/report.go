// Package report turns a batch of interview note sets into a single
// Key Findings / Recommendations report.
package report

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/ai"
	"github.com/spigell/interview-insights/internal/utils"
)

const (
	// MaxNoteSets bounds the number of note sets in one report request.
	MaxNoteSets = 20
	// DefaultMaxTokens leaves room for a multi-page report.
	DefaultMaxTokens = 4096

	defaultMaxLogLength = 200
)

//go:embed prompt.md
var systemPrompt string

// SystemPrompt returns the fixed report instruction.
func SystemPrompt() string {
	return strings.TrimSpace(systemPrompt)
}

// NoteSet is one unit of interview content: an uploaded file or a manual entry.
type NoteSet struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// ManualSource labels the k-th manual entry (1-based).
func ManualSource(k int) string {
	return fmt.Sprintf("Manual Entry %d", k)
}

// ValidationError reports a violated precondition of a report request.
type ValidationError struct {
	Reason string
	Count  int
}

func (e *ValidationError) Error() string {
	if e.Count > 0 {
		return fmt.Sprintf("%s: got %d, maximum is %d", e.Reason, e.Count, MaxNoteSets)
	}
	return e.Reason
}

const (
	ReasonNoNotes      = "no notes provided"
	ReasonTooManyNotes = "too many note sets"
)

// Validate checks the note set count bounds.
func Validate(notes []NoteSet) error {
	switch {
	case len(notes) == 0:
		return &ValidationError{Reason: ReasonNoNotes}
	case len(notes) > MaxNoteSets:
		return &ValidationError{Reason: ReasonTooManyNotes, Count: len(notes)}
	}
	return nil
}

// RenderPrompt renders the note sets into the single user message of a report
// request, numbering blocks from 1 in input order.
func RenderPrompt(notes []NoteSet) string {
	var blocks strings.Builder
	for i, note := range notes {
		fmt.Fprintf(&blocks, "\n--- Interview Notes Set %d (Source: %s) ---\n", i+1, note.Source)
		blocks.WriteString(note.Content)
		blocks.WriteString("\n")
	}

	return fmt.Sprintf(`I have %d set(s) of interview notes for you to analyze. Please read through all of them and provide a comprehensive report.

%s

Please analyze all of these interview notes and provide your report with Key Findings and Recommendations.`, len(notes), blocks.String())
}

// Report is the outcome of one report request.
type Report struct {
	Analysis   string   `json:"analysis"`
	NotesCount int      `json:"notes_count"`
	Sources    []string `json:"sources"`
	// Prompt is the rendered user message that produced Analysis.
	Prompt string `json:"-"`
}

// Builder runs report requests. It holds no per-request state, so one Builder
// can serve concurrent requests.
type Builder struct {
	completer ai.Completer
	maxTokens int
	logger    *zap.Logger
	maxLogLen int
}

func NewBuilder(completer ai.Completer, maxTokens, maxLogLength int, logger *zap.Logger) *Builder {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Builder{
		completer: completer,
		maxTokens: maxTokens,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Build validates notes, makes one completion call and returns the report.
// Errors are *ValidationError or *ai.ProviderError.
func (b *Builder) Build(ctx context.Context, notes []NoteSet) (*Report, error) {
	if err := Validate(notes); err != nil {
		return nil, err
	}

	prompt := RenderPrompt(notes)
	sources := make([]string, 0, len(notes))
	for _, note := range notes {
		sources = append(sources, note.Source)
	}

	b.logger.Debug("report request",
		zap.Int("notes_count", len(notes)),
		zap.Strings("sources", sources),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, b.maxLogLen)),
	)

	analysis, err := b.completer.Complete(ctx, ai.Request{
		System:    SystemPrompt(),
		MaxTokens: b.maxTokens,
		Messages:  []ai.Message{ai.UserMessage(prompt)},
	})
	if err != nil {
		return nil, ai.NewProviderError("", err)
	}

	b.logger.Info("report generated",
		zap.Int("notes_count", len(notes)),
		zap.Int("response_length", utf8.RuneCountInString(analysis)),
	)

	return &Report{
		Analysis:   analysis,
		NotesCount: len(notes),
		Sources:    sources,
		Prompt:     prompt,
	}, nil
}
