package ai

import (
	"context"
	"errors"
	"strings"
)

// Role tags the speaker of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a message authored by the user.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a message authored by the model.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Request is one completion call: a system instruction, an output budget and
// the ordered conversation to send as context.
type Request struct {
	System    string
	MaxTokens int
	Messages  []Message
}

// Validate checks the request before it is sent to a provider.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return errors.New("messages must not be empty")
	}
	if r.MaxTokens <= 0 {
		return errors.New("max tokens must be positive")
	}
	if r.Messages[len(r.Messages)-1].Role != RoleUser {
		return errors.New("last message must be authored by the user")
	}
	return nil
}

// Completer sends a request to a chat-completion provider and returns the
// response text. It makes exactly one attempt per call. Every failure is
// reported as a *ProviderError.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderError is the single failure kind of a completion call. Error
// subtypes of the underlying provider are not interpreted.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return "completion failed"
	}
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err unless it already is a *ProviderError.
func NewProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return err
	}
	return &ProviderError{Provider: strings.TrimSpace(provider), Err: err}
}

// IsProviderError reports whether err carries a *ProviderError.
func IsProviderError(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr)
}

type unconfigured struct {
	provider string
	reason   error
}

// Unconfigured returns a Completer that fails every call with reason. It lets
// a server start without credentials and report the problem per request.
func Unconfigured(provider string, reason error) Completer {
	if reason == nil {
		reason = errors.New("provider credential is not configured")
	}
	return &unconfigured{provider: provider, reason: reason}
}

func (u *unconfigured) Complete(context.Context, Request) (string, error) {
	return "", NewProviderError(u.provider, u.reason)
}
