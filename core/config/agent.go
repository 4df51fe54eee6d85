// Package config holds the agent configuration shared by the agent registry
// and the kernel. Configs follow the DefaultX / Merge pattern: defaults are
// built first, then non-zero values from a loaded file are merged on top.
package config

// ProviderConfig selects a language-service vendor.
type ProviderConfig struct {
	Name    string `json:"name" toml:"name"`                             // "openai" or "anthropic"
	BaseURL string `json:"base_url,omitempty" toml:"base_url,omitempty"` // empty uses the SDK default
	APIKey  string `json:"api_key,omitempty" toml:"api_key,omitempty"`
}

// ModelConfig names the model and the protocols it serves. Capability values
// are per-protocol default options (e.g. {"vision": {"max_tokens": 3000}}).
type ModelConfig struct {
	Name         string                    `json:"name" toml:"name"`
	Capabilities map[string]map[string]any `json:"capabilities,omitempty" toml:"capabilities,omitempty"`
}

// AgentConfig describes one agent: a provider plus a model.
type AgentConfig struct {
	Provider *ProviderConfig `json:"provider,omitempty" toml:"provider,omitempty"`
	Model    *ModelConfig    `json:"model,omitempty" toml:"model,omitempty"`
}

// DefaultAgentConfig returns the chat agent used when nothing is configured.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Provider: &ProviderConfig{Name: "openai"},
		Model: &ModelConfig{
			Name: "gpt-4.1-mini",
			Capabilities: map[string]map[string]any{
				"chat":  {},
				"tools": {},
			},
		},
	}
}

// DefaultVisionConfig returns the vision agent defaults.
func DefaultVisionConfig() AgentConfig {
	return AgentConfig{
		Provider: &ProviderConfig{Name: "openai"},
		Model: &ModelConfig{
			Name: "gpt-4o",
			Capabilities: map[string]map[string]any{
				"vision": {"max_tokens": 3000, "temperature": 0.7},
			},
		},
	}
}

// Merge applies non-zero values from source into c.
func (c *AgentConfig) Merge(source *AgentConfig) {
	if source.Provider != nil {
		if c.Provider == nil {
			c.Provider = &ProviderConfig{}
		}
		if source.Provider.Name != "" {
			c.Provider.Name = source.Provider.Name
		}
		if source.Provider.BaseURL != "" {
			c.Provider.BaseURL = source.Provider.BaseURL
		}
		if source.Provider.APIKey != "" {
			c.Provider.APIKey = source.Provider.APIKey
		}
	}

	if source.Model != nil {
		if c.Model == nil {
			c.Model = &ModelConfig{}
		}
		if source.Model.Name != "" {
			c.Model.Name = source.Model.Name
		}
		if len(source.Model.Capabilities) > 0 {
			c.Model.Capabilities = source.Model.Capabilities
		}
	}
}

// Options returns the configured default options for a protocol, or nil.
func (c *AgentConfig) Options(protocol string) map[string]any {
	if c.Model == nil {
		return nil
	}
	return c.Model.Capabilities[protocol]
}
