// Package mock provides an offline completer for demos and local development.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/interview-insights/internal/ai"
	"github.com/spigell/interview-insights/internal/utils"
)

const Model = "mock"

// Client answers deterministically from the request contents.
type Client struct{}

func New() *Client {
	return &Client{}
}

var _ ai.Completer = (*Client)(nil)

func (c *Client) Complete(_ context.Context, req ai.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", ai.NewProviderError(Model, err)
	}

	last := req.Messages[len(req.Messages)-1].Content

	if strings.Contains(req.System, "Key Findings") && strings.Contains(req.System, "Recommendations") {
		return fmt.Sprintf("## Key Findings\n- [MOCK] %d message(s) reviewed: %q\n\n## Recommendations\n- [MOCK] Connect a real provider for a full report.",
			len(req.Messages), utils.TruncateForLog(last, 60)), nil
	}

	return fmt.Sprintf("[MOCK] Received %d message(s). Latest: %q", len(req.Messages), utils.TruncateForLog(last, 100)), nil
}

func (c *Client) Model() string { return Model }
