package agent

import (
	"fmt"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/assistant/core/config"
	"github.com/tailored-agentic-units/assistant/core/protocol"
)

// Well-known agent names used by the assistant.
const (
	ChatAgent   = "chat"
	VisionAgent = "vision"
)

// AgentInfo describes a registered agent.
type AgentInfo struct {
	Name         string
	Provider     string
	Model        string
	Capabilities []protocol.Protocol
}

// Registry holds named agent configurations and instantiates agents lazily
// on first Get. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]config.AgentConfig
	agents  map[string]Agent
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]config.AgentConfig),
		agents:  make(map[string]Agent),
	}
}

// Register adds a named agent configuration.
func (r *Registry) Register(name string, cfg config.AgentConfig) error {
	if name == "" {
		return ErrEmptyAgentName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; exists {
		return fmt.Errorf("%w: %s", ErrAgentExists, name)
	}

	r.configs[name] = cfg
	return nil
}

// Set registers or overrides name with an already constructed agent. The
// stored config only carries the model name; capabilities are unchecked.
func (r *Registry) Set(name string, a Agent) error {
	if name == "" {
		return ErrEmptyAgentName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[name] = config.AgentConfig{Model: &config.ModelConfig{Name: a.Model()}}
	r.agents[name] = a
	return nil
}

// Replace updates the configuration of an existing agent and drops any
// cached instance.
func (r *Registry) Replace(name string, cfg config.AgentConfig) error {
	if name == "" {
		return ErrEmptyAgentName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	r.configs[name] = cfg
	delete(r.agents, name)
	return nil
}

// Unregister removes a named agent.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	delete(r.configs, name)
	delete(r.agents, name)
	return nil
}

// Get returns the named agent, creating it on first access.
func (r *Registry) Get(name string) (Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, registered := r.configs[name]
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	if a, exists := r.agents[name]; exists {
		return a, nil
	}

	a, err := New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent %q: %w", name, err)
	}

	r.agents[name] = a
	return a, nil
}

// Capabilities returns the protocols declared by a named agent's model,
// without instantiating it.
func (r *Registry) Capabilities(name string) ([]protocol.Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.configs[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	return capabilitiesFromConfig(&cfg), nil
}

// List returns all registered agents sorted by name.
func (r *Registry) List() []AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]AgentInfo, 0, len(r.configs))
	for name, cfg := range r.configs {
		info := AgentInfo{
			Name:         name,
			Capabilities: capabilitiesFromConfig(&cfg),
		}
		if cfg.Provider != nil {
			info.Provider = cfg.Provider.Name
		}
		if cfg.Model != nil {
			info.Model = cfg.Model.Name
		}
		infos = append(infos, info)
	}

	slices.SortFunc(infos, func(a, b AgentInfo) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})

	return infos
}

func capabilitiesFromConfig(cfg *config.AgentConfig) []protocol.Protocol {
	if cfg.Model == nil || len(cfg.Model.Capabilities) == 0 {
		return nil
	}

	capes := make([]protocol.Protocol, 0, len(cfg.Model.Capabilities))
	for key := range cfg.Model.Capabilities {
		if protocol.IsValid(key) {
			capes = append(capes, protocol.Protocol(key))
		}
	}

	slices.Sort(capes)
	return capes
}
