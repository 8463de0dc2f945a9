package mock

import (
	"context"
	"strings"
	"testing"

	"github.com/spigell/interview-insights/internal/ai"
)

func TestReportStyleResponse(t *testing.T) {
	out, err := New().Complete(context.Background(), ai.Request{
		System:    "Sections: Key Findings and Recommendations",
		MaxTokens: 100,
		Messages:  []ai.Message{ai.UserMessage("notes")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	findings := strings.Index(out, "Key Findings")
	recommendations := strings.Index(out, "Recommendations")
	if findings < 0 || recommendations < findings {
		t.Fatalf("expected both headers in order, got %q", out)
	}
}

func TestAcknowledgeResponse(t *testing.T) {
	out, err := New().Complete(context.Background(), ai.Request{
		System:    "confirm",
		MaxTokens: 100,
		Messages:  []ai.Message{ai.UserMessage("hello")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected latest message echoed, got %q", out)
	}
}
