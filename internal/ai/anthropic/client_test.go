package anthropic

import (
	"context"
	"errors"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/ai"
)

type fakeMessages struct {
	params []sdk.MessageNewParams
	resp   *sdk.Message
	err    error
}

func (f *fakeMessages) New(_ context.Context, params sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	f.params = append(f.params, params)
	return f.resp, f.err
}

func newTestClient(messages messageCreator) *Client {
	return &Client{
		messages:  messages,
		model:     "claude-test",
		logger:    zap.NewNop(),
		maxLogLen: defaultMaxLogLength,
	}
}

func TestClientComplete(t *testing.T) {
	fake := &fakeMessages{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "thinking"},
			{Type: "text", Text: " Got your notes. "},
			{Type: "text", Text: "ignored"},
		},
	}}
	c := newTestClient(fake)

	output, err := c.Complete(context.Background(), ai.Request{
		System:    "confirm receipt",
		MaxTokens: 512,
		Messages: []ai.Message{
			ai.UserMessage("notes one"),
			ai.AssistantMessage("ok"),
			ai.UserMessage("notes two"),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != "Got your notes." {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(fake.params) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.params))
	}

	params := fake.params[0]
	if params.MaxTokens != 512 {
		t.Fatalf("unexpected max tokens: %d", params.MaxTokens)
	}
	if string(params.Model) != "claude-test" {
		t.Fatalf("unexpected model: %q", params.Model)
	}
	if len(params.System) != 1 || params.System[0].Text != "confirm receipt" {
		t.Fatalf("unexpected system blocks: %+v", params.System)
	}
	if len(params.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].Role != sdk.MessageParamRoleUser || params.Messages[1].Role != sdk.MessageParamRoleAssistant {
		t.Fatalf("unexpected roles: %q, %q", params.Messages[0].Role, params.Messages[1].Role)
	}
}

func TestClientWrapsProviderErrors(t *testing.T) {
	fake := &fakeMessages{err: errors.New("401 unauthorized")}
	c := newTestClient(fake)

	_, err := c.Complete(context.Background(), ai.Request{MaxTokens: 10, Messages: []ai.Message{ai.UserMessage("x")}})

	var perr *ai.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if perr.Provider != providerName {
		t.Fatalf("unexpected provider: %q", perr.Provider)
	}
	if len(fake.params) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(fake.params))
	}
}

func TestClientEmptyResponse(t *testing.T) {
	fake := &fakeMessages{resp: &sdk.Message{}}
	c := newTestClient(fake)

	_, err := c.Complete(context.Background(), ai.Request{MaxTokens: 10, Messages: []ai.Message{ai.UserMessage("x")}})
	if !ai.IsProviderError(err) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New("", "", 0, nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
