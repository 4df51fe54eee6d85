// Package tools holds the local capabilities the language service may invoke
// mid-conversation. A Registry is constructed at startup, populated with
// descriptors and handlers, and injected into the kernel.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/assistant/core/protocol"
)

// Handler is the function signature for tool implementations.
// Handlers receive the request context and JSON-encoded arguments from the LLM.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is the tool execution output that feeds back into the next LLM turn.
// Content is a JSON payload; IsError marks an error payload.
type Result struct {
	Content string
	IsError bool
}

// JSONResult encodes v as a Result. Encoding failures become an error payload.
func JSONResult(v any, isError bool) Result {
	data, err := json.Marshal(v)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to encode tool result: %v", err))
	}
	return Result{Content: string(data), IsError: isError}
}

// ErrorResult builds the {"error": msg} payload.
func ErrorResult(msg string) Result {
	return JSONResult(map[string]string{"error": msg}, true)
}

type entry struct {
	tool    protocol.Tool
	handler Handler
}

// Registry maps tool names to descriptors and handlers. Safe for concurrent use.
type Registry struct {
	entries map[string]entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a new tool.
// Returns ErrAlreadyExists if a tool with the same name is already registered.
func (r *Registry) Register(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tool.Name)
	}

	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Replace updates an existing tool's definition and handler.
func (r *Registry) Replace(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, tool.Name)
	}

	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Get retrieves a handler by tool name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, false
	}
	return e.handler, true
}

// List returns the definitions of all registered tools sorted by name, so the
// descriptor list sent to the language service is stable across calls.
func (r *Registry) List() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]protocol.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, e.tool)
	}
	slices.SortFunc(list, func(a, b protocol.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})
	return list
}

// Execute dispatches a tool call to the registered handler by name.
// Returns ErrNotFound if the tool is not registered; handler errors are
// wrapped with the tool name.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	result, err := e.handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("tool %s execution failed: %w", name, err)
	}

	return result, nil
}

// DecodeArgs unmarshals tool arguments into v. Empty arguments decode as {}.
func DecodeArgs(args json.RawMessage, v any) error {
	if len(strings.TrimSpace(string(args))) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

// Text is a string argument that also accepts a JSON number, kept in its
// literal form ("time": 19 decodes as "19").
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case string:
		*t = Text(v)
	case json.Number:
		*t = Text(v.String())
	case nil:
	default:
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	return nil
}
