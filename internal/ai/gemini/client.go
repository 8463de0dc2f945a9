package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/interview-insights/internal/ai"
	"github.com/spigell/interview-insights/internal/utils"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.5-pro"

	defaultMaxLogLength = 200
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	return c.chats.Create(ctx, model, config, history)
}

// Generator is a completion adapter over the Google GenAI chat API.
type Generator struct {
	chats     chatCreator
	model     string
	logger    *zap.Logger
	maxLogLen int
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxLogLength int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
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

	return &Generator{
		chats:     genaiChats{chats: client.Chats},
		model:     model,
		logger:    logger,
		maxLogLen: maxLogLength,
	}, nil
}

// Complete replays all but the last message as chat history and sends the
// last one. A single attempt is made.
func (g *Generator) Complete(ctx context.Context, req ai.Request) (string, error) {
	if g == nil || g.chats == nil {
		return "", ai.NewProviderError(providerName, errors.New("gemini generator is not initialized"))
	}

	if err := req.Validate(); err != nil {
		return "", ai.NewProviderError(providerName, err)
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if system := strings.TrimSpace(req.System); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	last := req.Messages[len(req.Messages)-1]

	g.logger.Debug("gemini chat request",
		zap.Int("history_length", len(req.Messages)-1),
		zap.Int("max_output_tokens", req.MaxTokens),
		zap.Int("prompt_length", utf8.RuneCountInString(last.Content)),
		zap.String("prompt_preview", utils.TruncateForLog(last.Content, g.maxLogLen)),
	)

	chat, err := g.chats.Create(ctx, g.model, config, toHistory(req.Messages[:len(req.Messages)-1]))
	if err != nil {
		return "", ai.NewProviderError(providerName, fmt.Errorf("create chat: %w", err))
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: last.Content})
	if err != nil {
		return "", ai.NewProviderError(providerName, fmt.Errorf("send message: %w", err))
	}

	output, err := responseText(resp)
	if err != nil {
		return "", ai.NewProviderError(providerName, err)
	}

	g.logger.Debug("gemini chat response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func toHistory(messages []ai.Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		history = append(history, genai.NewContentFromText(msg.Content, role))
	}
	return history
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned no response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}
