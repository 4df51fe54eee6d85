package journal

// Config locates the turn journal.
type Config struct {
	Path string `json:"path,omitempty" toml:"path,omitempty"` // SQLite file; empty disables the journal
}

// DefaultConfig leaves the journal disabled.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
}

// Enabled reports whether a path is configured.
func (c *Config) Enabled() bool {
	return c.Path != ""
}
