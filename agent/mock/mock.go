// Package mock provides a scripted Agent for tests.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/tailored-agentic-units/assistant/core/protocol"
	"github.com/tailored-agentic-units/assistant/core/response"
)

// ErrNoResponse is returned when the scripted responses are exhausted.
var ErrNoResponse = errors.New("mock: no scripted response left")

// ToolsCall records the arguments of one Tools invocation.
type ToolsCall struct {
	Messages []protocol.Message
	Tools    []protocol.Tool
	Options  map[string]any
}

// VisionCall records the arguments of one Vision invocation.
type VisionCall struct {
	Messages []protocol.Message
	Format   *protocol.ResponseFormat
	Options  map[string]any
}

// MockAgent replays scripted responses in order and records every call.
type MockAgent struct {
	mu sync.Mutex

	id    string
	model string

	toolsResponses  []*response.ToolsResponse
	visionResponses []*response.ChatResponse
	toolsErr        error
	visionErr       error

	ToolsCalls  []ToolsCall
	VisionCalls []VisionCall
}

// Option configures a MockAgent.
type Option func(*MockAgent)

// WithID sets the agent ID.
func WithID(id string) Option {
	return func(m *MockAgent) { m.id = id }
}

// WithModel sets the reported model name.
func WithModel(model string) Option {
	return func(m *MockAgent) { m.model = model }
}

// WithToolsResponses scripts the replies of successive Tools calls.
func WithToolsResponses(responses ...*response.ToolsResponse) Option {
	return func(m *MockAgent) { m.toolsResponses = append(m.toolsResponses, responses...) }
}

// WithVisionResponses scripts the replies of successive Vision calls.
func WithVisionResponses(responses ...*response.ChatResponse) Option {
	return func(m *MockAgent) { m.visionResponses = append(m.visionResponses, responses...) }
}

// WithToolsError makes every Tools call fail with err.
func WithToolsError(err error) Option {
	return func(m *MockAgent) { m.toolsErr = err }
}

// WithVisionError makes every Vision call fail with err.
func WithVisionError(err error) Option {
	return func(m *MockAgent) { m.visionErr = err }
}

// NewMockAgent creates a MockAgent.
func NewMockAgent(opts ...Option) *MockAgent {
	m := &MockAgent{id: "mock-agent", model: "mock-model"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockAgent) ID() string    { return m.id }
func (m *MockAgent) Model() string { return m.model }

func (m *MockAgent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ToolsCalls = append(m.ToolsCalls, ToolsCall{
		Messages: append([]protocol.Message(nil), messages...),
		Tools:    tools,
		Options:  firstOptions(opts),
	})

	if m.toolsErr != nil {
		return nil, m.toolsErr
	}
	if len(m.toolsResponses) == 0 {
		return nil, ErrNoResponse
	}
	resp := m.toolsResponses[0]
	m.toolsResponses = m.toolsResponses[1:]
	return resp, nil
}

func (m *MockAgent) Vision(ctx context.Context, messages []protocol.Message, format *protocol.ResponseFormat, opts ...map[string]any) (*response.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.VisionCalls = append(m.VisionCalls, VisionCall{
		Messages: append([]protocol.Message(nil), messages...),
		Format:   format,
		Options:  firstOptions(opts),
	})

	if m.visionErr != nil {
		return nil, m.visionErr
	}
	if len(m.visionResponses) == 0 {
		return nil, ErrNoResponse
	}
	resp := m.visionResponses[0]
	m.visionResponses = m.visionResponses[1:]
	return resp, nil
}

// Calls returns the number of Tools and Vision invocations so far.
func (m *MockAgent) Calls() (tools, vision int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ToolsCalls), len(m.VisionCalls)
}

func firstOptions(opts []map[string]any) map[string]any {
	if len(opts) == 0 {
		return nil
	}
	return opts[0]
}
