package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/ai"
	"github.com/spigell/interview-insights/internal/ai/anthropic"
	"github.com/spigell/interview-insights/internal/ai/gemini"
	"github.com/spigell/interview-insights/internal/ai/mock"
	"github.com/spigell/interview-insights/internal/logger"
	"github.com/spigell/interview-insights/internal/metrics"
	"github.com/spigell/interview-insights/internal/secrets"
)

const (
	providerAnthropic = "anthropic"
	providerGemini    = "gemini"
	providerMock      = "mock"
)

// providerCompleter is the configured provider plus what /api/system-check reports.
type providerCompleter struct {
	ai.Completer
	provider   string
	model      string
	configured bool
}

func normalizeProvider(name string) (string, error) {
	provider := strings.TrimSpace(strings.ToLower(name))
	switch provider {
	case "":
		return providerAnthropic, nil
	case providerAnthropic, providerGemini, providerMock:
		return provider, nil
	default:
		return "", fmt.Errorf("unsupported ai provider: %s", name)
	}
}

// newCompleter builds the provider selected in cfg. A missing credential is
// returned as an error together with an Unconfigured completer, so callers
// decide whether to fail or degrade.
func newCompleter(ctx context.Context, cfg *AIConfig, m *metrics.Metrics, log *zap.Logger) (*providerCompleter, error) {
	provider, err := normalizeProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	if provider == providerMock {
		return &providerCompleter{
			Completer:  m.Instrument(provider, mock.New()),
			provider:   provider,
			model:      mock.Model,
			configured: true,
		}, nil
	}

	pc, env := cfg.Anthropic, "ANTHROPIC_API_KEY"
	if provider == providerGemini {
		pc, env = cfg.Gemini, "GEMINI_API_KEY"
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		File:  pc.APIKeyFile,
		Value: pc.APIKey,
		Env:   env,
	})
	if err != nil {
		err = fmt.Errorf("%w (or ai.%s.api-key-file / %s_FILE)", err, provider, env)
		return &providerCompleter{
			Completer: m.Instrument(provider, ai.Unconfigured(provider, err)),
			provider:  provider,
			model:     pc.Model,
		}, err
	}

	providerLogger := logger.WithCommonFields(log, provider, pc.Model)

	var client ai.Completer
	switch provider {
	case providerGemini:
		client, err = gemini.NewGenerator(ctx, apiKey, pc.Model, cfg.MaxLogLength, providerLogger)
	default:
		client, err = anthropic.New(apiKey, pc.Model, cfg.MaxLogLength, providerLogger)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", provider, err)
	}

	return &providerCompleter{
		Completer:  m.Instrument(provider, client),
		provider:   provider,
		model:      pc.Model,
		configured: true,
	}, nil
}
