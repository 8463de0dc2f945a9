package session

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	CommandExit    = "exit"
	CommandClear   = "clear"
	CommandAnalyze = "analyze"

	MessageGoodbye          = "Thank you for using Interview Insights App!"
	MessageCleared          = "Conversation cleared."
	MessageNothingToAnalyze = "No interview notes to analyze. Please enter some notes first."
)

// LineReader supplies user input one line at a time. io.EOF ends the loop.
type LineReader interface {
	ReadLine(ctx context.Context) (string, error)
}

// Output presents loop results to the user.
type Output interface {
	Notice(msg string)
	Reply(text string)
	Analysis(text string)
	Failure(err error)
}

// Loop is the interactive command loop over one session. Each input is
// processed to completion before the next one is read.
type Loop struct {
	service   *Service
	sessionID string
	in        LineReader
	out       Output
	logger    *zap.Logger
}

func NewLoop(service *Service, sessionID string, in LineReader, out Output, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		service:   service,
		sessionID: sessionID,
		in:        in,
		out:       out,
		logger:    logger,
	}
}

// Run reads and handles input until exit, end of input or ctx cancellation.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := l.in.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			l.out.Notice(MessageGoodbye)
			return nil
		}
		if err != nil {
			return err
		}

		if done := l.Step(ctx, line); done {
			return nil
		}
	}
}

// Step handles a single input line and reports whether the loop is finished.
func (l *Loop) Step(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)

	switch {
	case input == "":
		return false
	case strings.EqualFold(input, CommandExit):
		l.out.Notice(MessageGoodbye)
		return true
	case strings.EqualFold(input, CommandClear):
		l.service.Clear(l.sessionID)
		l.out.Notice(MessageCleared)
		return false
	case strings.EqualFold(input, CommandAnalyze):
		analysis, err := l.service.Analyze(ctx, l.sessionID)
		if errors.Is(err, ErrNothingToAnalyze) {
			l.out.Notice(MessageNothingToAnalyze)
			return false
		}
		if err != nil {
			l.fail(err)
			return false
		}
		l.out.Analysis(analysis)
		return false
	default:
		reply, err := l.service.Acknowledge(ctx, l.sessionID, input)
		if err != nil {
			l.fail(err)
			return false
		}
		l.out.Reply(reply)
		return false
	}
}

func (l *Loop) fail(err error) {
	l.logger.Debug("turn failed", zap.String("session_id", l.sessionID), zap.Error(err))
	l.out.Failure(err)
}
