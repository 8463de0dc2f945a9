package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/ai"
	"github.com/spigell/interview-insights/internal/extract"
)

func TestDecodeConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}

	if config.AI.Provider != providerAnthropic {
		t.Fatalf("provider = %q", config.AI.Provider)
	}
	if config.AI.Budgets.Acknowledge != 512 || config.AI.Budgets.Analyze != 1024 || config.AI.Budgets.Report != 4096 {
		t.Fatalf("unexpected budgets: %+v", config.AI.Budgets)
	}
	if config.AI.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Fatalf("anthropic model = %q", config.AI.Anthropic.Model)
	}
	if config.Server.Listen != ":5000" || config.Server.MaxUpload != "50MB" {
		t.Fatalf("unexpected server config: %+v", config.Server)
	}
	if !config.Extract.PDF || !config.Extract.Word {
		t.Fatalf("extraction should be enabled by default: %+v", config.Extract)
	}
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	content := "ai:\n  provider: gemini\n  gemini:\n    model: gemini-2.5-flash\nserver:\n  rate-limit: 2.5\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := viper.New()
	setDefaults(v)
	if err := readConfig(v, file); err != nil {
		t.Fatalf("readConfig: %v", err)
	}

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}
	if config.AI.Provider != providerGemini || config.AI.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected ai config: %+v / %+v", config.AI, config.AI.Gemini)
	}
	if config.Server.RateLimit != 2.5 {
		t.Fatalf("rate limit = %v", config.Server.RateLimit)
	}
	if config.AI.Budgets.Report != 4096 {
		t.Fatalf("defaults should survive a partial file, got %d", config.AI.Budgets.Report)
	}
}

func TestNormalizeProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: providerAnthropic},
		{in: " Gemini ", want: providerGemini},
		{in: "MOCK", want: providerMock},
		{in: "openai", wantErr: true},
	}

	for _, tt := range tests {
		got, err := normalizeProvider(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("normalizeProvider(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewCompleterWithoutCredential(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	c, err := newCompleter(context.Background(), &AIConfig{
		Provider:  providerAnthropic,
		Anthropic: &ProviderConfig{Model: "claude-sonnet-4-20250514"},
		Gemini:    &ProviderConfig{},
	}, nil, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error for a missing key")
	}
	if !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Fatalf("error should name the variable: %v", err)
	}
	if c == nil || c.configured {
		t.Fatalf("expected an unconfigured completer, got %+v", c)
	}

	_, callErr := c.Complete(context.Background(), ai.Request{
		MaxTokens: 10,
		Messages:  []ai.Message{ai.UserMessage("notes")},
	})
	if !ai.IsProviderError(callErr) {
		t.Fatalf("expected a provider error, got %v", callErr)
	}
}

func TestNewCompleterMock(t *testing.T) {
	c, err := newCompleter(context.Background(), &AIConfig{
		Provider:  providerMock,
		Anthropic: &ProviderConfig{},
		Gemini:    &ProviderConfig{},
	}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("newCompleter: %v", err)
	}
	if !c.configured || c.model != "mock" {
		t.Fatalf("unexpected completer: %+v", c)
	}
}

func TestNewCompleterAnthropicFromValue(t *testing.T) {
	c, err := newCompleter(context.Background(), &AIConfig{
		Provider:  providerAnthropic,
		Anthropic: &ProviderConfig{APIKey: "sk-test", Model: "claude-sonnet-4-20250514"},
		Gemini:    &ProviderConfig{},
	}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("newCompleter: %v", err)
	}
	if !c.configured || c.provider != providerAnthropic {
		t.Fatalf("unexpected completer: %+v", c)
	}
}

func TestParseMaxUpload(t *testing.T) {
	t.Parallel()

	tests := map[string]int64{
		"":       50 * 1024 * 1024,
		"50MB":   50_000_000,
		"16 MiB": 16 * 1024 * 1024,
	}
	for in, want := range tests {
		got, err := parseMaxUpload(in)
		if err != nil || got != want {
			t.Fatalf("parseMaxUpload(%q) = %d, %v; want %d", in, got, err, want)
		}
	}

	if _, err := parseMaxUpload("lots"); err == nil {
		t.Fatal("expected an error for an invalid size")
	}
}

func TestCollectNotes(t *testing.T) {
	dir := t.TempDir()
	notesFile := filepath.Join(dir, "ana.md")
	slides := filepath.Join(dir, "deck.pptx")
	if err := os.WriteFile(notesFile, []byte("pricing is confusing"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(slides, []byte("binary"), 0o600); err != nil {
		t.Fatal(err)
	}

	notes, err := collectNotes(
		extract.New(extract.Capabilities{PDF: true, Word: true}),
		[]string{notesFile, slides},
		[]string{"onboarding was slow", " "},
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("collectNotes: %v", err)
	}

	if len(notes) != 3 {
		t.Fatalf("expected 3 note sets, got %d", len(notes))
	}
	if notes[0].Source != "ana.md" || notes[0].Content != "pricing is confusing" {
		t.Fatalf("unexpected first note: %+v", notes[0])
	}
	if notes[1].Content != "[Unsupported file format: pptx]" {
		t.Fatalf("unexpected placeholder: %q", notes[1].Content)
	}
	if notes[2].Source != "Manual Entry 1" {
		t.Fatalf("unexpected manual source: %q", notes[2].Source)
	}

	if _, err := collectNotes(extract.New(extract.Capabilities{}), []string{filepath.Join(dir, "missing.txt")}, nil, zap.NewNop()); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
