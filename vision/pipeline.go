// Package vision describes a video scene by scene: frames are sampled with
// ffmpeg, sent to a vision-capable agent in one request, and the answer is
// split per frame. An interactive walk lets the user ask follow-up questions
// about each frame.
package vision

import (
	"context"
	"io"
)

// Pipeline chains extraction and description for one video.
type Pipeline struct {
	extractor *Extractor
	describer *Describer
}

// NewPipeline creates a Pipeline.
func NewPipeline(e *Extractor, d *Describer) *Pipeline {
	return &Pipeline{extractor: e, describer: d}
}

// Analyze extracts frames from videoPath and describes them in answer to question.
func (p *Pipeline) Analyze(ctx context.Context, videoPath, question string) (*Description, []Frame, error) {
	frames, err := p.extractor.Extract(ctx, videoPath)
	if err != nil {
		return nil, nil, err
	}

	desc, err := p.describer.Describe(ctx, frames, question)
	if err != nil {
		return nil, frames, err
	}
	return desc, frames, nil
}

// Interactive produces a baseline description and then walks the frames
// with the user.
func (p *Pipeline) Interactive(ctx context.Context, videoPath string, in io.Reader, out io.Writer) error {
	desc, frames, err := p.Analyze(ctx, videoPath, "지금 뭐가 보여?")
	if err != nil {
		return err
	}
	return Walk(ctx, frames, desc, p.describer, in, out)
}
