package session

import "github.com/tailored-agentic-units/assistant/core/protocol"

// Config holds session parameters. No options exist yet; the section keeps
// config files symmetric with the other subsystems.
type Config struct{}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {}

// New creates an in-memory Session from configuration, seeded with msgs.
func New(cfg *Config, msgs ...protocol.Message) (Session, error) {
	return NewMemorySession(msgs...), nil
}
