// Package session drives multi-turn conversations about interview notes.
package session

import (
	"context"
	_ "embed"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/ai"
	"github.com/spigell/interview-insights/internal/conversation"
	"github.com/spigell/interview-insights/internal/logger"
	"github.com/spigell/interview-insights/internal/utils"
)

const (
	// AcknowledgePrompt is the system instruction for plain note messages.
	AcknowledgePrompt = "You are a helpful assistant confirming that you've received interview notes."
	// AnalysisRequest is appended as the user turn of an analyze command.
	AnalysisRequest = "Please analyze these interview notes and provide insights and recommendations."

	DefaultAcknowledgeTokens = 512
	DefaultAnalyzeTokens     = 1024

	defaultMaxLogLength = 200
)

//go:embed analyze_prompt.md
var analyzePrompt string

// AnalyzePrompt returns the system instruction used by analyze.
func AnalyzePrompt() string {
	return strings.TrimSpace(analyzePrompt)
}

var (
	ErrNothingToAnalyze = errors.New("no interview notes to analyze")
	ErrEmptyMessage     = errors.New("message must not be empty")
)

// Budgets holds output token limits per turn type.
type Budgets struct {
	Acknowledge int
	Analyze     int
}

// Service runs conversation turns against a Store. A failed completion call
// leaves the session exactly as it was before the turn.
type Service struct {
	store     *conversation.Store
	completer ai.Completer
	budgets   Budgets
	logger    *zap.Logger
	maxLogLen int
}

func NewService(store *conversation.Store, completer ai.Completer, budgets Budgets, maxLogLength int, log *zap.Logger) *Service {
	if budgets.Acknowledge <= 0 {
		budgets.Acknowledge = DefaultAcknowledgeTokens
	}
	if budgets.Analyze <= 0 {
		budgets.Analyze = DefaultAnalyzeTokens
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Service{
		store:     store,
		completer: completer,
		budgets:   budgets,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

// Acknowledge appends text as a user message and stores the reply.
func (s *Service) Acknowledge(ctx context.Context, sessionID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}

	unlock := s.store.Lock(sessionID)
	defer unlock()

	return s.turn(ctx, sessionID, ai.UserMessage(text), AcknowledgePrompt, s.budgets.Acknowledge)
}

// Analyze asks for an analysis of everything recorded in the session.
func (s *Service) Analyze(ctx context.Context, sessionID string) (string, error) {
	unlock := s.store.Lock(sessionID)
	defer unlock()

	if s.store.Len(sessionID) == 0 {
		return "", ErrNothingToAnalyze
	}

	return s.turn(ctx, sessionID, ai.UserMessage(AnalysisRequest), AnalyzePrompt(), s.budgets.Analyze)
}

// Clear drops the session transcript.
func (s *Service) Clear(sessionID string) {
	unlock := s.store.Lock(sessionID)
	defer unlock()

	s.store.Clear(sessionID)
	logger.WithSession(s.logger, sessionID).Debug("conversation cleared")
}

// Record stores an already answered exchange, such as an uploaded batch and
// its report, so later turns can refer to it.
func (s *Service) Record(sessionID, user, assistant string) {
	unlock := s.store.Lock(sessionID)
	defer unlock()

	s.store.Append(sessionID, ai.UserMessage(user))
	s.store.Append(sessionID, ai.AssistantMessage(assistant))
}

// Len returns the number of messages in the session.
func (s *Service) Len(sessionID string) int {
	return s.store.Len(sessionID)
}

// turn must be called with the session lock held.
func (s *Service) turn(ctx context.Context, sessionID string, msg ai.Message, system string, budget int) (string, error) {
	log := logger.WithSession(s.logger, sessionID)

	s.store.Append(sessionID, msg)

	log.Debug("conversation turn",
		zap.Int("messages", s.store.Len(sessionID)),
		zap.Int("max_tokens", budget),
		zap.String("message_preview", utils.TruncateForLog(msg.Content, s.maxLogLen)),
	)

	reply, err := s.completer.Complete(ctx, ai.Request{
		System:    system,
		MaxTokens: budget,
		Messages:  s.store.Messages(sessionID),
	})
	if err != nil {
		s.store.RollbackLast(sessionID)
		log.Warn("completion failed, turn rolled back",
			zap.Int("messages", s.store.Len(sessionID)),
			zap.Error(err),
		)
		return "", ai.NewProviderError("", err)
	}

	s.store.Append(sessionID, ai.AssistantMessage(reply))

	log.Debug("conversation turn completed",
		zap.Int("messages", s.store.Len(sessionID)),
		zap.Int("response_length", utf8.RuneCountInString(reply)),
	)

	return reply, nil
}
