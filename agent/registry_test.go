package agent_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/assistant/agent"
	"github.com/tailored-agentic-units/assistant/agent/mock"
	"github.com/tailored-agentic-units/assistant/core/config"
	"github.com/tailored-agentic-units/assistant/core/protocol"
)

func openAIConfig(modelName string, caps ...string) config.AgentConfig {
	capabilities := make(map[string]map[string]any, len(caps))
	for _, c := range caps {
		capabilities[c] = map[string]any{}
	}

	return config.AgentConfig{
		Provider: &config.ProviderConfig{Name: "openai", APIKey: "test"},
		Model: &config.ModelConfig{
			Name:         modelName,
			Capabilities: capabilities,
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := agent.NewRegistry()

	if err := r.Register(agent.ChatAgent, openAIConfig("gpt-4.1-mini", "chat", "tools")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	a, err := r.Get(agent.ChatAgent)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a.ID() == "" {
		t.Error("agent has empty ID")
	}
	if a.Model() != "gpt-4.1-mini" {
		t.Errorf("got model %q, want gpt-4.1-mini", a.Model())
	}

	a2, err := r.Get(agent.ChatAgent)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if a.ID() != a2.ID() {
		t.Errorf("cached agent ID mismatch: got %q and %q", a.ID(), a2.ID())
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	r := agent.NewRegistry()

	if err := r.Register("", config.AgentConfig{}); !errors.Is(err, agent.ErrEmptyAgentName) {
		t.Errorf("got %v, want ErrEmptyAgentName", err)
	}

	cfg := openAIConfig("gpt-4o", "vision")
	if err := r.Register(agent.VisionAgent, cfg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(agent.VisionAgent, cfg); !errors.Is(err, agent.ErrAgentExists) {
		t.Errorf("got %v, want ErrAgentExists", err)
	}
}

func TestRegistry_GetErrors(t *testing.T) {
	r := agent.NewRegistry()

	if _, err := r.Get("nonexistent"); !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("got %v, want ErrAgentNotFound", err)
	}

	r.Register("broken", config.AgentConfig{Provider: &config.ProviderConfig{Name: "openai"}})
	if _, err := r.Get("broken"); !errors.Is(err, agent.ErrMissingModel) {
		t.Errorf("got %v, want ErrMissingModel", err)
	}
}

func TestRegistry_Set(t *testing.T) {
	r := agent.NewRegistry()
	m := mock.NewMockAgent(mock.WithID("scripted"), mock.WithModel("gpt-4o"))

	if err := r.Set(agent.VisionAgent, m); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := r.Get(agent.VisionAgent)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID() != "scripted" {
		t.Errorf("got ID %q, want scripted", got.ID())
	}

	infos := r.List()
	if len(infos) != 1 || infos[0].Model != "gpt-4o" {
		t.Errorf("unexpected list: %+v", infos)
	}
}

func TestRegistry_Replace(t *testing.T) {
	r := agent.NewRegistry()
	r.Register(agent.ChatAgent, openAIConfig("gpt-4.1-mini", "chat"))

	a1, err := r.Get(agent.ChatAgent)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if err := r.Replace(agent.ChatAgent, openAIConfig("gpt-4.1", "chat", "tools")); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	a2, err := r.Get(agent.ChatAgent)
	if err != nil {
		t.Fatalf("Get after Replace failed: %v", err)
	}
	if a1.ID() == a2.ID() {
		t.Error("expected new agent instance after Replace, got same ID")
	}
	if a2.Model() != "gpt-4.1" {
		t.Errorf("got model %q, want gpt-4.1", a2.Model())
	}

	if err := r.Replace("", config.AgentConfig{}); !errors.Is(err, agent.ErrEmptyAgentName) {
		t.Errorf("got %v, want ErrEmptyAgentName", err)
	}
	if err := r.Replace("nonexistent", config.AgentConfig{}); !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("got %v, want ErrAgentNotFound", err)
	}
}

func TestRegistry_List(t *testing.T) {
	r := agent.NewRegistry()
	r.Register(agent.VisionAgent, openAIConfig("gpt-4o", "vision"))
	r.Register(agent.ChatAgent, openAIConfig("gpt-4.1-mini", "tools", "chat"))

	infos := r.List()
	if len(infos) != 2 {
		t.Fatalf("got %d entries, want 2", len(infos))
	}
	if infos[0].Name != agent.ChatAgent || infos[1].Name != agent.VisionAgent {
		t.Errorf("got order %q, %q", infos[0].Name, infos[1].Name)
	}
	if infos[0].Provider != "openai" {
		t.Errorf("got provider %q, want openai", infos[0].Provider)
	}

	caps := infos[0].Capabilities
	if len(caps) != 2 || caps[0] != protocol.Chat || caps[1] != protocol.Tools {
		t.Errorf("got capabilities %v, want [chat tools]", caps)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := agent.NewRegistry()
	r.Register(agent.ChatAgent, openAIConfig("gpt-4.1-mini", "chat"))
	r.Get(agent.ChatAgent)

	if err := r.Unregister(agent.ChatAgent); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if _, err := r.Get(agent.ChatAgent); !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("got %v, want ErrAgentNotFound after Unregister", err)
	}
	if err := r.Unregister(agent.ChatAgent); !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("got %v, want ErrAgentNotFound", err)
	}
}

func TestRegistry_Capabilities(t *testing.T) {
	r := agent.NewRegistry()

	r.Register("mixed", config.AgentConfig{
		Provider: &config.ProviderConfig{Name: "openai"},
		Model: &config.ModelConfig{
			Name: "gpt-4o",
			Capabilities: map[string]map[string]any{
				"vision":     {},
				"embeddings": {},
				"tools":      {},
			},
		},
	})
	r.Register("no-model", config.AgentConfig{Provider: &config.ProviderConfig{Name: "openai"}})

	caps, err := r.Capabilities("mixed")
	if err != nil {
		t.Fatalf("Capabilities failed: %v", err)
	}
	if len(caps) != 2 || caps[0] != protocol.Tools || caps[1] != protocol.Vision {
		t.Errorf("got %v, want [tools vision]", caps)
	}

	caps, err = r.Capabilities("no-model")
	if err != nil {
		t.Fatalf("Capabilities failed: %v", err)
	}
	if caps != nil {
		t.Errorf("got %v, want nil for nil model", caps)
	}

	if _, err := r.Capabilities("nonexistent"); !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("got %v, want ErrAgentNotFound", err)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := agent.NewRegistry()

	for i := range 10 {
		name := string(rune('a' + i))
		r.Register(name, openAIConfig("model-"+name, "tools"))
	}

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() { r.List() })
		wg.Go(func() { r.Capabilities("a") })
		wg.Go(func() { r.Get("b") })
	}
	wg.Wait()
}
