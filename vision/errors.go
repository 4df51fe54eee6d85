package vision

import "errors"

var (
	ErrVideoNotFound   = errors.New("video file not found")
	ErrVideoUnreadable = errors.New("video file is corrupt or in an unsupported format")
	ErrNoFrames        = errors.New("no frames could be extracted")
	ErrInvalidInterval = errors.New("frame interval must be positive")
)
