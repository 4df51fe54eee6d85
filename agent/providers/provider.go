// Package providers adapts vendor SDKs to the normalized request and response
// types of the assistant. Each provider serves the tools and vision protocols.
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/assistant/core/config"
	"github.com/tailored-agentic-units/assistant/core/protocol"
	"github.com/tailored-agentic-units/assistant/core/response"
)

// ToolsData contains the data needed for a tools request.
type ToolsData struct {
	Model    string
	Messages []protocol.Message
	Tools    []protocol.Tool
	Options  map[string]any
}

// VisionData contains the data needed for a vision request. Images travel
// inside Messages as protocol.ContentPart values.
type VisionData struct {
	Model    string
	Messages []protocol.Message
	Format   *protocol.ResponseFormat
	Options  map[string]any
}

// Provider is a language-service backend.
type Provider interface {
	Name() string
	Tools(ctx context.Context, data *ToolsData) (*response.ToolsResponse, error)
	Vision(ctx context.Context, data *VisionData) (*response.ChatResponse, error)
}

// New creates the provider named by cfg.
func New(cfg *config.ProviderConfig) (Provider, error) {
	if cfg == nil {
		return nil, ErrMissingProvider
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "openai":
		return NewOpenAI(cfg), nil
	case "anthropic":
		return NewAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Name)
	}
}
