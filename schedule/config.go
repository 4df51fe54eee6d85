package schedule

// Config locates the schedule file.
type Config struct {
	Path string `json:"path,omitempty" toml:"path,omitempty"`
}

// DefaultConfig stores the book in schedule.json in the working directory.
func DefaultConfig() Config {
	return Config{Path: "schedule.json"}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
}
