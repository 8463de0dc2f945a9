package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/ai"
	"github.com/spigell/interview-insights/internal/utils"
)

const (
	providerName = "anthropic"
	defaultModel = "claude-sonnet-4-20250514"

	defaultMaxLogLength = 200
)

type messageCreator interface {
	New(ctx context.Context, params sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Client is a completion adapter over the Anthropic Messages API.
type Client struct {
	messages  messageCreator
	model     string
	logger    *zap.Logger
	maxLogLen int
}

// New creates a Client authenticated with apiKey.
func New(apiKey, model string, maxLogLength int, logger *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	// The SDK retries by default; every call here is a single attempt.
	client := sdk.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return &Client{
		messages:  &client.Messages,
		model:     model,
		logger:    logger,
		maxLogLen: maxLogLength,
	}, nil
}

// Complete sends the whole conversation in one Messages call.
func (c *Client) Complete(ctx context.Context, req ai.Request) (string, error) {
	if c == nil || c.messages == nil {
		return "", ai.NewProviderError(providerName, errors.New("anthropic client is not initialized"))
	}

	if err := req.Validate(); err != nil {
		return "", ai.NewProviderError(providerName, err)
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  toParams(req.Messages),
	}
	if system := strings.TrimSpace(req.System); system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	last := req.Messages[len(req.Messages)-1].Content
	c.logger.Debug("anthropic messages request",
		zap.Int("messages", len(req.Messages)),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Int("prompt_length", utf8.RuneCountInString(last)),
		zap.String("prompt_preview", utils.TruncateForLog(last, c.maxLogLen)),
	)

	msg, err := c.messages.New(ctx, params)
	if err != nil {
		return "", ai.NewProviderError(providerName, fmt.Errorf("create message: %w", err))
	}

	output, err := responseText(msg)
	if err != nil {
		return "", ai.NewProviderError(providerName, err)
	}

	c.logger.Debug("anthropic messages response",
		zap.String("stop_reason", string(msg.StopReason)),
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, c.maxLogLen)),
	)

	return output, nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

func toParams(messages []ai.Message) []sdk.MessageParam {
	params := make([]sdk.MessageParam, 0, len(messages))
	for _, msg := range messages {
		block := sdk.NewTextBlock(msg.Content)
		if msg.Role == ai.RoleAssistant {
			params = append(params, sdk.NewAssistantMessage(block))
			continue
		}
		params = append(params, sdk.NewUserMessage(block))
	}
	return params
}

// responseText returns the first text block, matching how the reply is read
// back into the conversation.
func responseText(msg *sdk.Message) (string, error) {
	if msg == nil {
		return "", errors.New("anthropic api returned no message")
	}

	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		if text := strings.TrimSpace(block.Text); text != "" {
			return text, nil
		}
	}

	return "", errors.New("anthropic api returned empty response")
}
