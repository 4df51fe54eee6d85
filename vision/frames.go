package vision

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tailored-agentic-units/assistant/observability"
)

// Frame is one still sampled from a video. It covers [Start, End) seconds.
type Frame struct {
	Index     int
	Start     float64
	End       float64
	ImagePath string
}

// Label renders the time span the way scene descriptions are keyed, e.g. "0-2초".
func (f Frame) Label() string {
	return fmt.Sprintf("%.0f-%.0f초", f.Start, f.End)
}

// Runner executes an external command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Extractor samples frames from a video with ffprobe and ffmpeg.
type Extractor struct {
	cfg      Config
	run      Runner
	observer observability.Observer
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithRunner replaces command execution.
func WithRunner(r Runner) ExtractorOption {
	return func(e *Extractor) { e.run = r }
}

// WithExtractorObserver sets the observer receiving extraction events.
func WithExtractorObserver(o observability.Observer) ExtractorOption {
	return func(e *Extractor) { e.observer = o }
}

// NewExtractor creates an Extractor from configuration.
func NewExtractor(cfg Config, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		cfg:      cfg,
		run:      execRunner,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract writes one JPEG per interval into the work directory and returns
// the frames in time order. Frames that fail to decode are skipped.
func (e *Extractor) Extract(ctx context.Context, videoPath string) ([]Frame, error) {
	if e.cfg.Interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if _, err := os.Stat(videoPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoPath)
		}
		return nil, fmt.Errorf("failed to stat video: %w", err)
	}

	duration, err := e.probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	start := time.Now()
	interval := float64(e.cfg.Interval)
	var frames []Frame
	for second := 0.0; second < duration; second += interval {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(e.cfg.WorkDir, fmt.Sprintf("frame_%d.jpg", len(frames)))
		_, err := e.run(ctx, e.cfg.FFmpeg,
			"-y", "-loglevel", "error",
			"-ss", strconv.FormatFloat(second, 'f', 3, 64),
			"-i", videoPath,
			"-frames:v", "1",
			"-q:v", "2",
			path,
		)
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}

		frames = append(frames, Frame{
			Index:     len(frames),
			Start:     second,
			End:       min(second+interval, duration),
			ImagePath: path,
		})
	}

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventFrames,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "vision.Extractor",
		Data: map[string]any{
			"video":       videoPath,
			"duration":    duration,
			"interval":    e.cfg.Interval,
			"frames":      len(frames),
			"duration_ms": time.Since(start).Milliseconds(),
		},
	})

	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	return frames, nil
}

func (e *Extractor) probe(ctx context.Context, videoPath string) (float64, error) {
	out, err := e.run(ctx, e.cfg.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrVideoUnreadable, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || duration <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrVideoUnreadable, videoPath)
	}
	return duration, nil
}

// Cleanup removes extracted images from dir. A missing dir is not an error.
func Cleanup(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read work directory: %w", err)
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
