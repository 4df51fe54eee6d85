package server

// Config holds the listen address of serve mode.
type Config struct {
	Addr string `json:"addr,omitempty" toml:"addr,omitempty"`
}

// DefaultConfig listens on the loopback interface only.
func DefaultConfig() Config {
	return Config{Addr: "127.0.0.1:8080"}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}
}
