package vision

// Config controls frame extraction and where the video pipeline works.
type Config struct {
	VideoPath string `json:"video_path,omitempty" toml:"video_path,omitempty"`
	Interval  int    `json:"interval,omitempty" toml:"interval,omitempty"` // seconds between frames
	WorkDir   string `json:"work_dir,omitempty" toml:"work_dir,omitempty"` // frames and explanation.txt
	FFmpeg    string `json:"ffmpeg,omitempty" toml:"ffmpeg,omitempty"`
	FFprobe   string `json:"ffprobe,omitempty" toml:"ffprobe,omitempty"`
	Agent     string `json:"agent,omitempty" toml:"agent,omitempty"` // agent registry name
}

// DefaultConfig samples input/sample.mp4 every two seconds into temp/.
func DefaultConfig() Config {
	return Config{
		VideoPath: "input/sample.mp4",
		Interval:  2,
		WorkDir:   "temp",
		FFmpeg:    "ffmpeg",
		FFprobe:   "ffprobe",
		Agent:     "vision",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.VideoPath != "" {
		c.VideoPath = source.VideoPath
	}
	if source.Interval > 0 {
		c.Interval = source.Interval
	}
	if source.WorkDir != "" {
		c.WorkDir = source.WorkDir
	}
	if source.FFmpeg != "" {
		c.FFmpeg = source.FFmpeg
	}
	if source.FFprobe != "" {
		c.FFprobe = source.FFprobe
	}
	if source.Agent != "" {
		c.Agent = source.Agent
	}
}
