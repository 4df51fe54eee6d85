package kernel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/tailored-agentic-units/assistant/core/config"
	"github.com/tailored-agentic-units/assistant/journal"
	"github.com/tailored-agentic-units/assistant/memory"
	"github.com/tailored-agentic-units/assistant/observability"
	"github.com/tailored-agentic-units/assistant/schedule"
	"github.com/tailored-agentic-units/assistant/server"
	"github.com/tailored-agentic-units/assistant/session"
	"github.com/tailored-agentic-units/assistant/vision"
	"github.com/tailored-agentic-units/assistant/weather"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvAnthropicKey   = "ANTHROPIC_API_KEY"
	EnvOpenWeatherKey = "OPENWEATHER_API_KEY"
)

// Config holds initialization parameters for all assistant subsystems.
// Each subsystem section delegates to that subsystem's config-driven constructor.
type Config struct {
	Agent        config.AgentConfig            `json:"agent" toml:"agent"`
	Agents       map[string]config.AgentConfig `json:"agents,omitempty" toml:"agents,omitempty"`
	Session      session.Config                `json:"session" toml:"session"`
	Memory       memory.Config                 `json:"memory" toml:"memory"`
	Schedule     schedule.Config               `json:"schedule" toml:"schedule"`
	Weather      weather.Config                `json:"weather" toml:"weather"`
	Vision       vision.Config                 `json:"vision" toml:"vision"`
	Journal      journal.Config                `json:"journal" toml:"journal"`
	Server       server.Config                 `json:"server" toml:"server"`
	Log          observability.Config          `json:"log" toml:"log"`
	SystemPrompt string                        `json:"system_prompt,omitempty" toml:"system_prompt,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
// The vision agent is pre-registered under its configured name.
func DefaultConfig() Config {
	visionCfg := vision.DefaultConfig()
	return Config{
		Agent:        config.DefaultAgentConfig(),
		Agents:       map[string]config.AgentConfig{visionCfg.Agent: config.DefaultVisionConfig()},
		Session:      session.DefaultConfig(),
		Memory:       memory.DefaultConfig(),
		Schedule:     schedule.DefaultConfig(),
		Weather:      weather.DefaultConfig(),
		Vision:       visionCfg,
		Journal:      journal.DefaultConfig(),
		Server:       server.DefaultConfig(),
		Log:          observability.DefaultConfig(),
		SystemPrompt: DefaultSystemPrompt,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method. Named agents merge over existing entries.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Session.Merge(&source.Session)
	c.Memory.Merge(&source.Memory)
	c.Schedule.Merge(&source.Schedule)
	c.Weather.Merge(&source.Weather)
	c.Vision.Merge(&source.Vision)
	c.Journal.Merge(&source.Journal)
	c.Server.Merge(&source.Server)
	c.Log.Merge(&source.Log)

	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}

	for name, agentCfg := range source.Agents {
		if c.Agents == nil {
			c.Agents = make(map[string]config.AgentConfig)
		}
		merged := c.Agents[name]
		merged.Merge(&agentCfg)
		c.Agents[name] = merged
	}
}

// ApplyEnv fills API keys that the config leaves empty from the environment.
// Keys follow the provider each agent is configured with.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	applyAgentEnv(&c.Agent, getenv)
	for name, agentCfg := range c.Agents {
		applyAgentEnv(&agentCfg, getenv)
		c.Agents[name] = agentCfg
	}

	if c.Weather.APIKey == "" {
		c.Weather.APIKey = getenv(EnvOpenWeatherKey)
	}
}

func applyAgentEnv(cfg *config.AgentConfig, getenv func(string) string) {
	if cfg.Provider == nil || cfg.Provider.APIKey != "" {
		return
	}

	p := *cfg.Provider
	switch strings.ToLower(p.Name) {
	case "openai":
		p.APIKey = getenv(EnvOpenAIKey)
	case "anthropic":
		p.APIKey = getenv(EnvAnthropicKey)
	}
	cfg.Provider = &p
}

// LoadConfig reads a JSON or TOML config file (chosen by extension), merges
// it with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		err = toml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
