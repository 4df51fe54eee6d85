// Package kernel implements the assistant's intent router: one user message
// in, at most two language-service calls, one reply out.
//
// The first call carries the registered tool descriptors. When the service
// asks for a tool, the first requested call is executed locally, its JSON
// result is appended as evidence, and a second call without tools produces
// the reply. There is no loop and no retry.
//
//	k, err := kernel.New(&cfg)
//	result, err := k.Handle(ctx, "What's the weather in Seoul?")
package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/assistant/agent"
	"github.com/tailored-agentic-units/assistant/core/protocol"
	"github.com/tailored-agentic-units/assistant/journal"
	"github.com/tailored-agentic-units/assistant/memory"
	"github.com/tailored-agentic-units/assistant/observability"
	"github.com/tailored-agentic-units/assistant/schedule"
	"github.com/tailored-agentic-units/assistant/session"
	"github.com/tailored-agentic-units/assistant/tools"
	"github.com/tailored-agentic-units/assistant/weather"
)

// Result holds the outcome of one turn.
type Result struct {
	Response  string          // Final text reply.
	Calls     int             // Language-service calls made (1 or 2).
	ToolCall  *ToolCallRecord // Executed tool call, nil when none was requested.
	SessionID string          // Identifier of the turn's conversation.
}

// ToolCallRecord describes the tool call executed during a turn.
type ToolCallRecord struct {
	protocol.ToolCall
	Result  string // JSON payload sent back as evidence.
	IsError bool   // Payload is an {"error": ...} object.
	Ignored int    // Further calls requested in the same reply and not executed.
}

// ToolExecutor abstracts tool listing and execution. *tools.Registry satisfies it.
type ToolExecutor interface {
	List() []protocol.Tool
	Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

// Recorder persists finished turns. *journal.Journal satisfies it.
type Recorder interface {
	Record(ctx context.Context, t *journal.Turn) error
}

// Option configures a Kernel after config-driven initialization.
// Applied by New after cold start; overrides replace config-created defaults.
type Option func(*Kernel)

// WithAgent overrides the config-created agent.
func WithAgent(a agent.Agent) Option {
	return func(k *Kernel) { k.agent = a }
}

// WithRegistry overrides the config-created agent registry.
func WithRegistry(r *agent.Registry) Option {
	return func(k *Kernel) { k.registry = r }
}

// WithToolExecutor overrides the config-created tool registry.
func WithToolExecutor(e ToolExecutor) Option {
	return func(k *Kernel) { k.tools = e }
}

// WithMemoryStore overrides the config-created memory store.
func WithMemoryStore(s memory.Store) Option {
	return func(k *Kernel) { k.store = s }
}

// WithObserver overrides the configured observer.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// WithRecorder journals every turn to r.
func WithRecorder(r Recorder) Option {
	return func(k *Kernel) { k.recorder = r }
}

// WithScheduleStore overrides the config-created schedule store.
func WithScheduleStore(s *schedule.Store) Option {
	return func(k *Kernel) { k.schedule = s }
}

// WithSystemPrompt overrides the configured system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(k *Kernel) { k.systemPrompt = prompt }
}

// Kernel routes user messages to tools and the language service.
type Kernel struct {
	agent        agent.Agent
	registry     *agent.Registry
	sessionCfg   session.Config
	store        memory.Store
	tools        ToolExecutor
	observer     observability.Observer
	recorder     Recorder
	systemPrompt string
	schedule     *schedule.Store
}

// New creates a Kernel from configuration. The chat agent, agent registry,
// memory store, schedule store, weather client and tool registry are built
// from their config sections. Functional options applied after
// initialization can override any subsystem for testing.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	observer, err := observability.Resolve(cfg.Log.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	a, err := agent.New(&cfg.Agent)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	reg := agent.NewRegistry()
	for name, agentCfg := range cfg.Agents {
		if err := reg.Register(name, agentCfg); err != nil {
			return nil, fmt.Errorf("failed to register agent %q: %w", name, err)
		}
	}

	store, err := memory.NewStore(&cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}

	book := schedule.Open(cfg.Schedule.Path, schedule.WithObserver(observer))

	wx, err := weather.NewClient(cfg.Weather, weather.WithObserver(observer))
	if err != nil {
		return nil, fmt.Errorf("failed to create weather client: %w", err)
	}

	k := &Kernel{
		agent:        a,
		registry:     reg,
		sessionCfg:   cfg.Session,
		store:        store,
		observer:     observer,
		systemPrompt: cfg.SystemPrompt,
		schedule:     book,
	}

	toolReg := tools.NewRegistry()
	if err := toolReg.Register(weather.Tool(), weather.Handler(wx)); err != nil {
		return nil, err
	}
	// Bound through k so WithScheduleStore reaches the tool.
	scheduleHandler := func(ctx context.Context, args json.RawMessage) (tools.Result, error) {
		return schedule.Handler(k.schedule)(ctx, args)
	}
	if err := toolReg.Register(schedule.Tool(), scheduleHandler); err != nil {
		return nil, err
	}
	k.tools = toolReg

	for _, opt := range opts {
		opt(k)
	}

	// The registry resolves the chat agent to the one Handle uses.
	if err := k.registry.Set(agent.ChatAgent, k.agent); err != nil {
		return nil, fmt.Errorf("failed to register chat agent: %w", err)
	}

	return k, nil
}

// Registry returns the kernel's agent registry.
func (k *Kernel) Registry() *agent.Registry {
	return k.registry
}

// Schedule returns the schedule store backing the manage_schedule tool.
func (k *Kernel) Schedule() *schedule.Store {
	return k.schedule
}

// Observer returns the observer the kernel reports through.
func (k *Kernel) Observer() observability.Observer {
	return k.observer
}

// Handle resolves one user message. Tool failures are sent back to the
// language service as error payloads; only language-service and memory
// failures are returned as errors.
func (k *Kernel) Handle(ctx context.Context, userMessage string) (result *Result, err error) {
	start := time.Now()

	systemContent, promptErr := k.buildSystemContent(ctx)

	var seed []protocol.Message
	if systemContent != "" {
		seed = append(seed, protocol.NewMessage(protocol.RoleSystem, systemContent))
	}
	seed = append(seed, protocol.NewMessage(protocol.RoleUser, userMessage))

	sesh, err := session.New(&k.sessionCfg, seed...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	result = &Result{SessionID: sesh.ID()}
	defer func() { k.record(ctx, userMessage, result, err, start) }()

	if promptErr != nil {
		return result, promptErr
	}

	available := k.tools.List()
	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "kernel.Handle",
		Data: map[string]any{
			"session_id":     sesh.ID(),
			"message_length": len(userMessage),
			"messages":       sesh.Len(),
			"tools":          len(available),
		},
	})

	choice, err := k.call(ctx, sesh, available)
	result.Calls = 1
	if err != nil {
		return result, err
	}

	if len(choice.ToolCalls) == 0 {
		result.Response = choice.Content
		k.complete(ctx, result)
		return result, nil
	}

	tc := choice.ToolCalls[0]
	if tc.ID == "" {
		tc.ID = "call_" + uuid.NewString()
	}
	sesh.AddMessage(protocol.Message{
		Role:      protocol.RoleAssistant,
		Content:   choice.Content,
		ToolCalls: []protocol.ToolCall{tc},
	})

	record := k.execute(ctx, tc, len(choice.ToolCalls)-1)
	result.ToolCall = record
	sesh.AddMessage(protocol.Message{
		Role:       protocol.RoleTool,
		Content:    record.Result,
		ToolCallID: tc.ID,
	})

	choice, err = k.call(ctx, sesh, nil)
	result.Calls = 2
	if err != nil {
		return result, err
	}

	result.Response = choice.Content
	k.complete(ctx, result)
	return result, nil
}

type reply struct {
	Content   string
	ToolCalls []protocol.ToolCall
}

func (k *Kernel) call(ctx context.Context, sesh session.Session, available []protocol.Tool) (*reply, error) {
	resp, err := k.agent.Tools(ctx, sesh.Messages(), available)
	if err != nil {
		k.fail(ctx, err)
		return nil, fmt.Errorf("agent call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		k.fail(ctx, ErrEmptyResponse)
		return nil, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	return &reply{Content: msg.Content, ToolCalls: msg.ToolCalls}, nil
}

func (k *Kernel) execute(ctx context.Context, tc protocol.ToolCall, ignored int) *ToolCallRecord {
	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventToolCall,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "kernel.Handle",
		Data: map[string]any{
			"name":    tc.Name,
			"ignored": ignored,
		},
	})

	record := &ToolCallRecord{ToolCall: tc, Ignored: ignored}

	toolResult, toolErr := k.tools.Execute(ctx, tc.Name, json.RawMessage(tc.Arguments))
	if toolErr != nil {
		errResult := tools.ErrorResult(toolErr.Error())
		record.Result = errResult.Content
		record.IsError = true
	} else {
		record.Result = toolResult.Content
		record.IsError = toolResult.IsError
	}

	level := observability.LevelVerbose
	if record.IsError {
		level = observability.LevelWarning
	}
	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventToolComplete,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "kernel.Handle",
		Data: map[string]any{
			"name":  tc.Name,
			"error": record.IsError,
		},
	})

	return record
}

func (k *Kernel) complete(ctx context.Context, result *Result) {
	data := map[string]any{
		"session_id":      result.SessionID,
		"calls":           result.Calls,
		"response_length": len(result.Response),
	}
	if result.ToolCall != nil {
		data["tool"] = result.ToolCall.Name
	}
	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventResponse,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "kernel.Handle",
		Data:      data,
	})
}

func (k *Kernel) fail(ctx context.Context, err error) {
	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventError,
		Level:     observability.LevelError,
		Timestamp: time.Now(),
		Source:    "kernel.Handle",
		Data:      map[string]any{"error": err.Error()},
	})
}

func (k *Kernel) record(ctx context.Context, input string, result *Result, turnErr error, start time.Time) {
	duration := time.Since(start)
	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnComplete,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "kernel.Handle",
		Data: map[string]any{
			"session_id":  result.SessionID,
			"calls":       result.Calls,
			"failed":      turnErr != nil,
			"duration_ms": duration.Milliseconds(),
		},
	})

	if k.recorder == nil {
		return
	}

	turn := &journal.Turn{
		SessionID:  result.SessionID,
		Input:      input,
		Reply:      result.Response,
		Calls:      result.Calls,
		DurationMS: duration.Milliseconds(),
	}
	if tc := result.ToolCall; tc != nil {
		turn.ToolName = tc.Name
		turn.ToolArguments = tc.Arguments
		turn.ToolResult = tc.Result
		turn.ToolError = tc.IsError
	}
	if turnErr != nil {
		turn.Error = turnErr.Error()
	}

	// A journal failure never fails the turn.
	if err := k.recorder.Record(context.WithoutCancel(ctx), turn); err != nil {
		k.observer.OnEvent(ctx, observability.Event{
			Type:      EventJournal,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "kernel.Handle",
			Data:      map[string]any{"error": err.Error()},
		})
	}
}

// buildSystemContent appends memory notes to the system prompt.
func (k *Kernel) buildSystemContent(ctx context.Context) (string, error) {
	content := k.systemPrompt

	if k.store == nil {
		return content, nil
	}

	cache := memory.NewCache(k.store)
	if err := cache.Bootstrap(ctx, memory.NamespaceNotes); err != nil {
		return "", fmt.Errorf("failed to load memory notes: %w", err)
	}

	var notes []string
	for _, entry := range cache.Entries(memory.NamespaceNotes) {
		if note := strings.TrimSpace(string(entry.Value)); note != "" {
			notes = append(notes, note)
		}
	}
	if len(notes) == 0 {
		return content, nil
	}
	if content == "" {
		return strings.Join(notes, "\n\n"), nil
	}
	return content + "\n\n" + strings.Join(notes, "\n\n"), nil
}
