// Package console runs the interactive chat loop: read a line, answer it,
// repeat until the user types "exit chat". Lines that ask about the video are
// routed to the vision pipeline when one is configured.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tailored-agentic-units/assistant/vision"
)

const (
	ExitCommand = "exit chat"
	Farewell    = "AI: Chat ended. Have a great day!"
	Banner      = "=== Starting AI Assistant Chat ==="
)

var visionKeywords = []string{
	"see", "what do you see", "what can you see", "show me",
	"describe the video", "describe the scene", "what is on the screen",
	"video", "frame", "scene",
}

// IsVisionQuestion reports whether text asks about the video.
func IsVisionQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range visionKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// HandleFunc answers one chat line.
type HandleFunc func(ctx context.Context, line string) (string, error)

// Analyzer describes a video in answer to a question. *vision.Pipeline satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, videoPath, question string) (*vision.Description, []vision.Frame, error)
}

// REPL is the blocking chat loop.
type REPL struct {
	handle    HandleFunc
	analyzer  Analyzer
	videoPath string
}

// Option configures a REPL.
type Option func(*REPL)

// WithVision routes vision questions to a, describing the video at videoPath.
func WithVision(a Analyzer, videoPath string) Option {
	return func(r *REPL) {
		r.analyzer = a
		r.videoPath = videoPath
	}
}

// New creates a REPL answering ordinary lines with handle.
func New(handle HandleFunc, opts ...Option) *REPL {
	r := &REPL{handle: handle}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines from in until the exit command, end of input or
// cancellation. Each line is answered before the next is read; a failed
// turn is printed and the loop continues.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, Banner)
	fmt.Fprintf(out, "Type your question below. (Type '%s' to quit)\n\n", ExitCommand)

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if strings.ToLower(line) == ExitCommand {
			fmt.Fprintln(out, Farewell)
			return nil
		}

		var answer string
		var err error
		if r.analyzer != nil && IsVisionQuestion(line) {
			fmt.Fprintln(out, "AI: Analyzing video... please wait.")
			fmt.Fprintln(out)
			answer, err = guard(func() (string, error) { return r.describe(ctx, line), nil })
		} else {
			answer, err = guard(func() (string, error) { return r.handle(ctx, line) })
		}
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
			continue
		}
		fmt.Fprintln(out, "AI:", answer)
	}
}

// guard runs one turn, turning a panic into an error so the loop survives it.
func guard(turn func() (string, error)) (answer string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("turn panicked: %v", p)
		}
	}()
	return turn()
}

// describe answers a vision question. Failures are explained in the reply
// rather than returned.
func (r *REPL) describe(ctx context.Context, question string) string {
	desc, _, err := r.analyzer.Analyze(ctx, r.videoPath, question)
	switch {
	case err == nil:
		return desc.Text()
	case errors.Is(err, vision.ErrVideoNotFound):
		return fmt.Sprintf("%v\n\nPlace the video file at %s.", err, r.videoPath)
	case errors.Is(err, vision.ErrVideoUnreadable):
		return fmt.Sprintf("%v\n\nThe video file may be damaged or in an unsupported format.", err)
	case errors.Is(err, vision.ErrNoFrames):
		return "No frames could be extracted from the video."
	default:
		return fmt.Sprintf("Video analysis failed: %v", err)
	}
}
