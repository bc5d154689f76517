package pipeline

import (
	"context"

	"github.com/banshee-data/swing.report/internal/capture"
)

// SliceFrameSource serves a pre-decoded frame slice as a FrameSource. Used
// by tests and by callers that decode a whole clip up front.
type SliceFrameSource struct {
	frames []capture.Frame
	next   int
	closed bool
}

// NewSliceFrameSource wraps frames as a sequential source.
func NewSliceFrameSource(frames []capture.Frame) *SliceFrameSource {
	return &SliceFrameSource{frames: frames}
}

func (s *SliceFrameSource) Next(ctx context.Context) (capture.Frame, bool, error) {
	if err := ctx.Err(); err != nil {
		return capture.Frame{}, false, err
	}
	if s.closed || s.next >= len(s.frames) {
		return capture.Frame{}, false, nil
	}
	f := s.frames[s.next]
	s.next++
	return f, true, nil
}

func (s *SliceFrameSource) Total() int { return len(s.frames) }

func (s *SliceFrameSource) Close() error {
	s.closed = true
	return nil
}
