// Package agent binds a provider to a model configuration and exposes the
// tools and vision protocols to the rest of the assistant.
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/assistant/agent/providers"
	"github.com/tailored-agentic-units/assistant/core/config"
	"github.com/tailored-agentic-units/assistant/core/protocol"
	"github.com/tailored-agentic-units/assistant/core/response"
)

// Agent is a configured language-service client.
//
// Per-call options are layered over the model's configured defaults for the
// protocol being invoked.
type Agent interface {
	ID() string
	Model() string
	Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error)
	Vision(ctx context.Context, messages []protocol.Message, format *protocol.ResponseFormat, opts ...map[string]any) (*response.ChatResponse, error)
}

type agent struct {
	id       string
	cfg      config.AgentConfig
	provider providers.Provider
}

// New creates an Agent from configuration, resolving its provider.
func New(cfg *config.AgentConfig) (Agent, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	p, err := providers.New(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return NewWithProvider(cfg, p)
}

// NewWithProvider creates an Agent around an already constructed provider.
func NewWithProvider(cfg *config.AgentConfig, p providers.Provider) (Agent, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &agent{
		id:       uuid.Must(uuid.NewV7()).String(),
		cfg:      *cfg,
		provider: p,
	}, nil
}

func validate(cfg *config.AgentConfig) error {
	if cfg == nil || cfg.Provider == nil {
		return ErrMissingProvider
	}
	if cfg.Model == nil || cfg.Model.Name == "" {
		return ErrMissingModel
	}
	return nil
}

func (a *agent) ID() string { return a.id }

func (a *agent) Model() string { return a.cfg.Model.Name }

func (a *agent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error) {
	if err := a.supports(protocol.Tools); err != nil {
		return nil, err
	}

	return a.provider.Tools(ctx, &providers.ToolsData{
		Model:    a.cfg.Model.Name,
		Messages: messages,
		Tools:    tools,
		Options:  providers.MergeOptions(a.cfg.Options(string(protocol.Tools)), opts...),
	})
}

func (a *agent) Vision(ctx context.Context, messages []protocol.Message, format *protocol.ResponseFormat, opts ...map[string]any) (*response.ChatResponse, error) {
	if err := a.supports(protocol.Vision); err != nil {
		return nil, err
	}

	return a.provider.Vision(ctx, &providers.VisionData{
		Model:    a.cfg.Model.Name,
		Messages: messages,
		Format:   format,
		Options:  providers.MergeOptions(a.cfg.Options(string(protocol.Vision)), opts...),
	})
}

// supports reports whether the model declares p. A model with no declared
// capabilities accepts every protocol.
func (a *agent) supports(p protocol.Protocol) error {
	caps := a.cfg.Model.Capabilities
	if len(caps) == 0 {
		return nil
	}
	if _, ok := caps[string(p)]; !ok {
		return fmt.Errorf("%w: %s does not support %s", ErrUnsupportedProtocol, a.cfg.Model.Name, p)
	}
	return nil
}
